// Package mocks provides test doubles for the service and store interfaces.
package mocks
