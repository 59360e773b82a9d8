//go:build debug

package ecs

const debugAssertions = true
