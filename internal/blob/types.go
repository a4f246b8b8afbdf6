// Package blob re-exports the blob storage contract and builds drivers from
// configuration.
package blob

import (
	"tieintrack/internal/blob/core"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for blob storage backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
)

var (
	// ErrExists is returned when Put targets an existing key.
	ErrExists = core.ErrExists
	// ErrNotExist is returned when Get targets a missing key.
	ErrNotExist = core.ErrNotExist
)

// Replace overwrites key with data.
var Replace = core.Replace

// ReadAll fetches the full content of key.
var ReadAll = core.ReadAll
