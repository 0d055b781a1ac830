package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"google.golang.org/grpc"

	"github.com/ncoquelet/RobinWood/identity"
	"github.com/ncoquelet/RobinWood/ledger"
	"github.com/ncoquelet/RobinWood/rpc"
	"github.com/ncoquelet/RobinWood/store"
	"github.com/ncoquelet/RobinWood/store/filelog"
	"github.com/ncoquelet/RobinWood/store/sqlitelog"
)

const backendsHelp = `memory    volatile in-process log
file      JSONL append-only log under -path
sqlite    sqlite-backed log under -path
mirrored  file and sqlite, every append written to both`

func main() {
	fs := flag.NewFlagSet("robinwoodd", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7780", "listen address")
	backend := fs.String("backend", "file", "event log backend name")
	path := fs.String("path", "robinwood-data", "data directory for persistent backends")
	authorityFlag := fs.String("authority", "", "authority address (0x hex); falls back to ROBINWOOD_AUTHORITY")
	keysDir := fs.String("keys", "", "key store directory; every stored key is registered as a known signer")
	listBackends := fs.Bool("list-backends", false, "List supported backends and exit")

	_ = fs.Parse(os.Args[1:])
	if *listBackends {
		fmt.Fprintln(os.Stdout, backendsHelp)
		return
	}

	raw := *authorityFlag
	if raw == "" {
		raw = os.Getenv("ROBINWOOD_AUTHORITY")
	}
	authority, err := identity.ParseAddress(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "robinwoodd: bad authority address: %v\n", err)
		os.Exit(2)
	}

	dir := identity.NewDirectory()
	if *keysDir != "" {
		ks, err := identity.OpenKeyStore(*keysDir)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		names, err := ks.List()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		for _, name := range names {
			kp, err := ks.Load(name)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			addr, err := dir.RegisterKeypair(kp)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			fmt.Fprintf(os.Stderr, "robinwoodd: registered signer %s (%s)\n", name, addr)
		}
	}

	log, err := openBackend(*backend, *path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer log.Close()

	l, err := ledger.Open(context.Background(), ledger.Config{
		Authority: authority,
		Verifier:  dir,
		Log:       log,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	rpc.RegisterLedgerServer(s, rpc.NewServer(l))

	fmt.Fprintf(os.Stderr, "robinwoodd listening on %s (backend=%s, authority=%s)\n",
		lis.Addr().String(), *backend, authority)
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openBackend(name, path string) (store.Log, error) {
	mkdir := func() error { return os.MkdirAll(path, 0o700) }
	switch name {
	case "memory":
		return store.NewMemLog(), nil
	case "file":
		if err := mkdir(); err != nil {
			return nil, err
		}
		return filelog.Open(filepath.Join(path, "events.log"))
	case "sqlite":
		if err := mkdir(); err != nil {
			return nil, err
		}
		return sqlitelog.Open(filepath.Join(path, "events.db"))
	case "mirrored":
		if err := mkdir(); err != nil {
			return nil, err
		}
		fl, err := filelog.Open(filepath.Join(path, "events.log"))
		if err != nil {
			return nil, err
		}
		sl, err := sqlitelog.Open(filepath.Join(path, "events.db"))
		if err != nil {
			fl.Close()
			return nil, err
		}
		return &store.Replicating{Backends: []store.NamedLog{
			{Name: "file", Log: fl},
			{Name: "sqlite", Log: sl},
		}}, nil
	default:
		return nil, fmt.Errorf("robinwoodd: unknown backend %q (see -list-backends)", name)
	}
}
