package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/unkn0wn-root/entitycache"
	"github.com/unkn0wn-root/entitycache/internal/keys"
	"github.com/unkn0wn-root/entitycache/snapshot"
)

// maxSnapshotSize bounds what put will decode.
const maxSnapshotSize = 16 << 20

var errUsage = errors.New("usage")

type commands struct {
	cache entitycache.Cache
	ns    string
	out   io.Writer
	in    io.Reader
}

func (c *commands) dispatch(ctx context.Context, args []string) error {
	name, rest := args[0], args[1:]
	switch name {
	case "keys":
		return c.keys(ctx)
	case "get":
		return c.get(ctx, rest)
	case "put":
		return c.put(ctx, rest)
	case "touch":
		id, err := oneID(name, rest)
		if err != nil {
			return err
		}
		return c.cache.MarkActive(ctx, id)
	case "ts":
		id, err := oneID(name, rest)
		if err != nil {
			return err
		}
		return c.ts(ctx, id)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}
}

func (c *commands) keys(ctx context.Context) error {
	set, err := c.cache.GetAllKeys(ctx)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(set))
	for k := range set {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintln(c.out, k)
	}
	return nil
}

func (c *commands) get(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	format := fs.String("format", "json", "snapshot format")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := oneID("get", fs.Args())
	if err != nil {
		return err
	}
	enc, err := snapshot.ByName(*format)
	if err != nil {
		return err
	}

	e, err := c.cache.GetEntity(ctx, id)
	if err != nil {
		return err
	}
	subs, err := c.subHashes(ctx, id)
	if err != nil {
		return err
	}
	s, err := snapshot.FromEntity(e, subs)
	if err != nil {
		return err
	}
	b, err := enc.Encode(s)
	if err != nil {
		return err
	}
	_, err = c.out.Write(b)
	return err
}

// subHashes reads every sub-hash of id listed in the key index.
func (c *commands) subHashes(ctx context.Context, id uint32) (map[string]map[string]float64, error) {
	set, err := c.cache.GetAllKeys(ctx)
	if err != nil {
		return nil, err
	}
	subs := make(map[string]map[string]float64)
	for k := range set {
		kid, sub, ok := keys.Parse(c.ns, k)
		if !ok || kid != id || sub == "" {
			continue
		}
		m, err := c.cache.GetMap(ctx, id, sub)
		if err != nil {
			return nil, err
		}
		subs[sub] = m
	}
	return subs, nil
}

func (c *commands) put(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("put", flag.ContinueOnError)
	format := fs.String("format", "json", "snapshot format")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: put [-format f] <file|->", errUsage)
	}
	inner, err := snapshot.ByName(*format)
	if err != nil {
		return err
	}

	var b []byte
	if path := fs.Arg(0); path == "-" {
		b, err = io.ReadAll(io.LimitReader(c.in, maxSnapshotSize+1))
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}

	s, err := snapshot.LimitCodec[snapshot.Snapshot]{Inner: inner, MaxDecode: maxSnapshotSize}.Decode(b)
	if err != nil {
		return err
	}
	fields, err := snapshot.ToFields(s)
	if err != nil {
		return err
	}
	return c.cache.SetEntity(ctx, s.ID, fields)
}

func (c *commands) ts(ctx context.Context, id uint32) error {
	t, err := c.cache.GetTimestamp(ctx, id)
	if err != nil {
		return err
	}
	if t.IsZero() {
		fmt.Fprintln(c.out, "never")
		return nil
	}
	fmt.Fprintln(c.out, t.Format(time.RFC3339Nano))
	return nil
}

func oneID(cmd string, args []string) (uint32, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: %s <id>", errUsage, cmd)
	}
	n, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: invalid id %q", errUsage, cmd, args[0])
	}
	return uint32(n), nil
}
