// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

//go:build tools

// Package main pins test-only dependencies to go.mod.
package main

import (
	// Unit tests
	_ "github.com/alicebob/miniredis/v2"
	_ "github.com/pashagolub/pgxmock/v4"
	_ "github.com/stretchr/testify/assert"
	_ "github.com/stretchr/testify/mock"
	_ "github.com/stretchr/testify/require"
	_ "go.uber.org/goleak"

	// Integration tests
	_ "github.com/onsi/ginkgo/v2"
	_ "github.com/onsi/gomega"
	_ "github.com/testcontainers/testcontainers-go/modules/postgres"
)
