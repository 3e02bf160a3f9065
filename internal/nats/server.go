// Package nats runs the embedded NATS JetStream server that backs draft
// storage and the activity log. The first recruitdash process to start owns
// the server (primary mode) and records its port in the data directory;
// later processes connect to it as clients (node mode).
package nats

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/recruitdash/recruitdash/internal/logger"
)

// PortFile is the name of the file holding the primary server's port.
const PortFile = "server.port"

var log = logger.Named("nats")

// StartEmbeddedNATS starts a JetStream-enabled server storing data under
// dataDir. It listens on a random loopback port, which is returned and
// written to the port file so other processes can join.
func StartEmbeddedNATS(dataDir string) (*server.Server, int, error) {
	log.Debug("starting embedded server with data dir %s", dataDir)

	opts := &server.Options{
		ServerName: "recruitdash",
		Host:       "127.0.0.1",
		Port:       server.RANDOM_PORT,
		JetStream:  true,
		StoreDir:   dataDir,
		NoSigs:     true,
		NoLog:      true,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, 0, fmt.Errorf("create nats server: %w", err)
	}
	go ns.Start()

	if !ns.ReadyForConnections(4 * time.Second) {
		ns.Shutdown()
		return nil, 0, errors.New("nats server failed to start within timeout")
	}

	addr, ok := ns.Addr().(*net.TCPAddr)
	if !ok {
		ns.Shutdown()
		return nil, 0, errors.New("nats server has no tcp listener")
	}
	if err := writePort(dataDir, addr.Port); err != nil {
		ns.Shutdown()
		return nil, 0, err
	}

	log.Info("embedded server listening on port %d", addr.Port)
	return ns, addr.Port, nil
}

// TryConnectExisting connects to a server started by another process, using
// the port file in dataDir. It returns nil when there is no usable server;
// a stale port file is removed.
func TryConnectExisting(dataDir string) *nats.Conn {
	port, err := readPort(dataDir)
	if err != nil {
		return nil
	}
	nc, err := ConnectToPort(port)
	if err != nil {
		log.Debug("port file points at dead server (%v), removing", err)
		RemovePortFile(dataDir)
		return nil
	}
	return nc
}

// ConnectToPort connects to a server on the loopback interface.
func ConnectToPort(port int) (*nats.Conn, error) {
	return nats.Connect(
		fmt.Sprintf("nats://127.0.0.1:%d", port),
		nats.Name("recruitdash"),
		nats.Timeout(time.Second),
		nats.MaxReconnects(2),
	)
}

// ConnectInProcess connects without going through the network.
func ConnectInProcess(ns *server.Server) (*nats.Conn, error) {
	nc, err := nats.Connect("", nats.InProcessServer(ns), nats.Name("recruitdash"))
	if err != nil {
		return nil, fmt.Errorf("connect in-process: %w", err)
	}
	return nc, nil
}

// CreateJetStream creates a JetStream context from a NATS connection.
func CreateJetStream(nc *nats.Conn) (jetstream.JetStream, error) {
	return jetstream.New(nc)
}

// RemovePortFile deletes the port file, ignoring a missing one.
func RemovePortFile(dataDir string) {
	if err := os.Remove(filepath.Join(dataDir, PortFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("remove port file: %v", err)
	}
}

func writePort(dataDir string, port int) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create nats data dir: %w", err)
	}
	path := filepath.Join(dataDir, PortFile)
	if err := os.WriteFile(path, []byte(strconv.Itoa(port)), 0o644); err != nil {
		return fmt.Errorf("write port file: %w", err)
	}
	return nil
}

func readPort(dataDir string) (int, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, PortFile))
	if err != nil {
		return 0, err
	}
	port, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || port <= 0 {
		return 0, fmt.Errorf("bad port file contents %q", data)
	}
	return port, nil
}

// Shutdown drains the connection and, when ns is non-nil, stops the server.
// Both steps are bounded so a wedged server cannot hang the process.
func Shutdown(nc *nats.Conn, ns *server.Server) error {
	if nc != nil {
		drained := make(chan error, 1)
		go func() { drained <- nc.Drain() }()

		select {
		case err := <-drained:
			if err != nil {
				log.Warn("drain failed, forcing close: %v", err)
				nc.Close()
			}
		case <-time.After(2 * time.Second):
			log.Warn("drain timed out after 2s, forcing close")
			nc.Close()
		}
	}

	if ns == nil {
		return nil
	}
	ns.Shutdown()
	stopped := make(chan struct{})
	go func() {
		ns.WaitForShutdown()
		close(stopped)
	}()
	select {
	case <-stopped:
		log.Debug("server shut down cleanly")
		return nil
	case <-time.After(5 * time.Second):
		return errors.New("nats server shutdown timed out")
	}
}
