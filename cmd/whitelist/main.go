package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/netip"
	"os"
	"os/signal"
	"syscall"
	"time"

	"whitelist/internal/whitelist"
)

func main() {
	timeout := flag.Duration("timeout", 2*time.Second, "inactivity window before an address is forgotten")
	cleanup := flag.Duration("cleanup", 500*time.Millisecond, "background cleanup interval (0 disables)")
	keySize := flag.Int("key-size", whitelist.DefaultKeySize, "address key size in bytes (4 or 16)")
	flag.Parse()

	addrs := flag.Args()
	if len(addrs) == 0 {
		addrs = []string{"10.0.0.7", "fd00::42"}
	}

	// Signal-aware context is the root of ownership for long-lived background work.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wl := whitelist.New(whitelist.Config{
		KeySize:         *keySize,
		Timeout:         *timeout,
		CleanupInterval: *cleanup,
	})
	defer func() {
		if err := wl.Close(); err != nil {
			log.Printf("whitelist close: %v", err)
		}
	}()

	log.Println("whitelist demo starting")
	log.Printf("config: keySize=%d timeout=%s cleanupEvery=%s", wl.KeySize(), wl.Timeout(), *cleanup)

	clients := parseClients(addrs, wl.KeySize())

	// -------------------------------------------------------------------
	// 1) Admit each address, as the portal does after a login.
	// -------------------------------------------------------------------
	for _, cl := range clients {
		if err := wl.Add(cl.key); err != nil {
			log.Printf("ADD %s: %v", cl.addr, err)
			continue
		}
		ok, _ := wl.Check(cl.key)
		log.Printf("ADD %s -> CHECK %v", cl.addr, ok)
	}
	log.Printf("entries: %d", wl.Len())

	// -------------------------------------------------------------------
	// 2) Wait past the timeout; the maintenance loop (or the next Check)
	//    forgets every address that was not re-added.
	// -------------------------------------------------------------------
	wait := time.NewTimer(*timeout + *cleanup + 100*time.Millisecond)
	defer wait.Stop()

	select {
	case <-ctx.Done():
		log.Println("received shutdown signal")
		return
	case <-wait.C:
	}

	log.Printf("entries after timeout: %d (swept now: %d)", wl.Len(), wl.CleanUp())
	for _, cl := range clients {
		ok, _ := wl.Check(cl.key)
		log.Printf("CHECK %s -> %v", cl.addr, ok)
	}
	log.Printf("stats: %+v", wl.Stats())

	fmt.Println("Done.")
}

// client is one address from the command line, kept in argument order.
type client struct {
	addr string
	key  []byte
}

// parseClients keys each address, logging and dropping the ones that do not fit.
func parseClients(addrs []string, size int) []client {
	var clients []client
	for _, s := range addrs {
		k, err := parseKey(s, size)
		if err != nil {
			log.Printf("skip %q: %v", s, err)
			continue
		}
		clients = append(clients, client{addr: s, key: k})
	}
	return clients
}

func parseKey(s string, size int) ([]byte, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return nil, fmt.Errorf("parse address: %w", err)
	}
	return whitelist.KeyFromAddr(addr, size)
}
