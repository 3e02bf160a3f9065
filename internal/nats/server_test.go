package nats

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartEmbeddedNATS_PrimaryAndNode(t *testing.T) {
	dir := t.TempDir()

	ns, port, err := StartEmbeddedNATS(dir)
	require.NoError(t, err)
	assert.Greater(t, port, 0)

	data, err := os.ReadFile(filepath.Join(dir, PortFile))
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	primary, err := ConnectInProcess(ns)
	require.NoError(t, err)

	node := TryConnectExisting(dir)
	require.NotNil(t, node, "second process joins through the port file")
	node.Close()

	require.NoError(t, Shutdown(primary, ns))
	RemovePortFile(dir)
	assert.Nil(t, TryConnectExisting(dir))
}

func TestTryConnectExisting_StalePortFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writePort(dir, 1))

	assert.Nil(t, TryConnectExisting(dir))
	_, err := os.Stat(filepath.Join(dir, PortFile))
	assert.True(t, os.IsNotExist(err), "stale port file is removed")
}

func TestReadPort_Garbage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, PortFile), []byte("nope"), 0o644))
	_, err := readPort(dir)
	assert.Error(t, err)
}

func TestSetupStreamAndBucket(t *testing.T) {
	dir := t.TempDir()
	ns, _, err := StartEmbeddedNATS(dir)
	require.NoError(t, err)
	nc, err := ConnectInProcess(ns)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Shutdown(nc, ns) })

	js, err := CreateJetStream(nc)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := SetupActivityStream(ctx, js)
	require.NoError(t, err)
	assert.Equal(t, ActivityStream, stream.CachedInfo().Config.Name)

	kv, err := SetupDraftBucket(ctx, js)
	require.NoError(t, err)
	assert.Equal(t, DraftBucket, kv.Bucket())

	assert.Equal(t, "recruitdash.activity.acme.job_created", SubjectForEvent("acme", "job_created"))
	assert.Equal(t, "recruitdash.activity.acme.>", SubjectForProfile("acme"))
}
