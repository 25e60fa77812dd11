// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/cqsync/platform"
	"github.com/xmidt-org/cqsync/property"
)

func exportableProperties(device platform.Device) property.List {
	return property.List{
		property.KeyType, property.TypeBinary,
		property.KeyDeviceHandleList, uint64(device), property.ListEnd,
		property.KeyExportHandleTypes, property.HandleSyncFD, property.ListEnd,
		0,
	}
}

func TestExportNotRequested(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		device = platform.NewDevice()
		ctx    = platform.NewContext(device)
	)

	s, err := New(ctx, property.Binary())
	require.NoError(err)

	_, _, err = s.Export(device, property.HandleSyncFD)
	assert.ErrorIs(err, ErrInvalidOperation)
}

func TestExportInvalidDevice(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		device  = platform.NewDevice()
		foreign = platform.NewDevice()
		ctx     = platform.NewContext(device)
	)

	s, err := New(ctx, exportableProperties(device))
	require.NoError(err)

	_, _, err = s.Export(foreign, property.HandleSyncFD)
	assert.ErrorIs(err, ErrInvalidDevice)
}

func TestExportImportRoundTrip(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		device = platform.NewDevice()
		ctx    = platform.NewContext(device)
	)

	exporter, err := New(ctx, exportableProperties(device))
	require.NoError(err)

	require.NoError(exporter.Signal())

	fd, size, err := exporter.Export(device, property.HandleSyncFD)
	require.NoError(err)
	assert.Equal(HandleSize, size)

	imported, err := New(ctx, ImportProperties(fd))
	require.NoError(err)

	// the signal that preceded the export is observable through the import
	assert.Equal(Signaled, imported.Payload())

	// consuming through the import consumes the one logical signal
	require.NoError(imported.Consume(context.Background()))
	assert.Equal(Unsignaled, imported.Payload())
	assert.Equal(Unsignaled, exporter.Payload())

	// signaling the import is observable through the exporter, and vice versa
	require.NoError(imported.Signal())
	assert.Equal(Signaled, exporter.Payload())
	require.NoError(exporter.Consume(context.Background()))
	assert.Equal(Unsignaled, imported.Payload())
}

func TestImportConsumesDescriptor(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		device = platform.NewDevice()
		ctx    = platform.NewContext(device)
	)

	exporter, err := New(ctx, exportableProperties(device))
	require.NoError(err)

	fd, _, err := exporter.Export(device, property.HandleSyncFD)
	require.NoError(err)

	_, err = New(ctx, ImportProperties(fd))
	require.NoError(err)

	// ownership transferred: the descriptor cannot be imported again
	second, err := New(ctx, ImportProperties(fd))
	assert.Nil(second)
	assert.ErrorIs(err, ErrInvalidHandle)
}

func TestExportIsRepeatable(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		device = platform.NewDevice()
		ctx    = platform.NewContext(device)
	)

	exporter, err := New(ctx, exportableProperties(device))
	require.NoError(err)

	first, _, err := exporter.Export(device, property.HandleSyncFD)
	require.NoError(err)

	second, _, err := exporter.Export(device, property.HandleSyncFD)
	require.NoError(err)
	assert.NotEqual(first, second)

	// each descriptor independently tracks the same payload
	require.NoError(exporter.Signal())

	a, err := New(ctx, ImportProperties(first))
	require.NoError(err)
	b, err := New(ctx, ImportProperties(second))
	require.NoError(err)

	assert.Equal(Signaled, a.Payload())
	assert.Equal(Signaled, b.Payload())
}

func TestExportDestroyed(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		device = platform.NewDevice()
		ctx    = platform.NewContext(device)
	)

	s, err := New(ctx, exportableProperties(device))
	require.NoError(err)
	require.NoError(s.Release())

	_, _, err = s.Export(device, property.HandleSyncFD)
	assert.ErrorIs(err, ErrInvalidSemaphore)
}
