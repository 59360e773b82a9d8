//go:build !debug

package ecs

const debugAssertions = false
