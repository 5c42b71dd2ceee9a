// Package shard implements the per-shard executor: a dedicated goroutine
// with exclusive ownership of one Store and one AOF log, consuming work
// items from an inbound queue strictly in FIFO order.
package shard

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Le-Stef/ferrumdb/internal/aof"
	"github.com/Le-Stef/ferrumdb/internal/command"
	"github.com/Le-Stef/ferrumdb/internal/metrics"
	"github.com/Le-Stef/ferrumdb/internal/protocol"
	"github.com/Le-Stef/ferrumdb/internal/store"
)

// WorkItem is one command enqueued against a shard: the command name, its
// arguments (key excluded or included per command, matching how the client
// sent it), and a reply channel the executor answers on exactly once.
type WorkItem struct {
	Name  string
	Args  []string
	Reply chan protocol.Value
}

// Config bundles the knobs a shard is constructed with.
type Config struct {
	ID                 int
	AOFPath            string
	SyncPolicy         aof.SyncPolicy
	InboxCapacity      int
	ActiveExpireSample int
	ActiveExpireEvery  int
	Log                zerolog.Logger
	Metrics            *metrics.Registry
}

// Shard is one independent partition of the keyspace, its own executor
// goroutine, and its own AOF log.
type Shard struct {
	id    int
	cfg   Config
	store *store.Store
	aof   *aof.Writer
	inbox chan WorkItem
	pub   metrics.Publisher

	itemsSinceExpire int
	commandsTotal    int64
	commandsObserved int64
	stopped          bool
	done             chan struct{}
	shardLabel       string
}

// New constructs a shard, opens its AOF, and replays any existing records
// into the store before the shard starts accepting live work.
func New(cfg Config) (*Shard, error) {
	s := &Shard{
		id:         cfg.ID,
		cfg:        cfg,
		store:      store.New(),
		inbox:      make(chan WorkItem, cfg.InboxCapacity),
		done:       make(chan struct{}),
		shardLabel: strconv.Itoa(cfg.ID),
	}

	replayed, err := aof.Replay(cfg.AOFPath, s.applyReplayedCommand)
	if err != nil {
		return nil, fmt.Errorf("shard %d: replay failed: %w", cfg.ID, err)
	}
	if replayed > 0 {
		cfg.Log.Info().Int("shard_id", cfg.ID).Int("records", replayed).Msg("replayed AOF records")
	}

	writer, err := aof.Open(cfg.AOFPath, cfg.SyncPolicy)
	if err != nil {
		return nil, fmt.Errorf("shard %d: opening AOF: %w", cfg.ID, err)
	}
	s.aof = writer
	return s, nil
}

func (s *Shard) applyReplayedCommand(cmd protocol.Value) error {
	if cmd.Kind != protocol.KindArray || len(cmd.Array) == 0 {
		return fmt.Errorf("replay: expected a non-empty command array")
	}
	name := strings.ToUpper(cmd.Array[0].Str)
	args := make([]string, len(cmd.Array)-1)
	for i, v := range cmd.Array[1:] {
		args[i] = v.Str
	}
	ctx := &command.Context{Store: s.store}
	reply, _ := command.Dispatch(ctx, name, args)
	if reply.IsError() {
		return fmt.Errorf("replay: command %s failed: %s", name, reply.Str)
	}
	return nil
}

// Submit enqueues a work item. It blocks if the inbox is full, which is the
// intended backpressure mechanism for a bounded-capacity Go channel.
func (s *Shard) Submit(item WorkItem) {
	s.inbox <- item
}

// ID returns the shard's index.
func (s *Shard) ID() int { return s.id }

// Snapshot returns the most recently published metrics snapshot.
func (s *Shard) Snapshot() *metrics.Snapshot { return s.pub.Load() }

// Run is the executor loop; it returns when the inbox is closed. A
// persistence error does not return from Run: failStop ends the process.
func (s *Shard) Run() {
	defer close(s.done)
	for item := range s.inbox {
		if s.stopped {
			item.Reply <- protocol.Error("ERR persistence failure")
			continue
		}
		s.process(item)
	}
}

func (s *Shard) process(item WorkItem) {
	ctx := &command.Context{Store: s.store}
	reply, mutated := command.Dispatch(ctx, item.Name, item.Args)
	s.commandsTotal++

	if mutated {
		cmd := protocol.BulkStrings(append([]string{strings.ToUpper(item.Name)}, item.Args...)...)
		if err := s.aof.Append(cmd); err != nil {
			s.failStop(item, err)
			return
		}
	}
	if err := s.aof.BackgroundSyncErr(); err != nil {
		s.cfg.Log.Warn().Err(err).Int("shard_id", s.id).Msg("background AOF sync failed")
	}

	item.Reply <- reply
	s.publishSnapshot()
	s.maybeActiveExpire()
}

// failStop implements the persistence-failure policy: this shard stops
// accepting new work, answers the failing item and drains the rest of the
// inbox with the same error, logs, and the process exits non-zero.
func (s *Shard) failStop(item WorkItem, cause error) {
	s.stopped = true
	s.cfg.Log.Error().Err(cause).Int("shard_id", s.id).Msg("AOF write failure, stopping shard")
	item.Reply <- protocol.Error("ERR persistence failure")
	s.publishSnapshot()
	for {
		select {
		case pending, ok := <-s.inbox:
			if !ok {
				os.Exit(1)
			}
			pending.Reply <- protocol.Error("ERR persistence failure")
		default:
			os.Exit(1)
		}
	}
}

func (s *Shard) maybeActiveExpire() {
	s.itemsSinceExpire++
	if s.itemsSinceExpire < s.cfg.ActiveExpireEvery {
		return
	}
	s.itemsSinceExpire = 0
	s.store.ActiveExpireCycle(s.cfg.ActiveExpireSample)
}

func (s *Shard) publishSnapshot() {
	snap := metrics.Snapshot{
		ShardID:           s.id,
		KeyCount:          int64(s.store.Len()),
		ApproxMemoryBytes: s.store.ApproxMemoryBytes(),
		CommandsProcessed: s.commandsTotal,
		LastAOFOffset:     s.aof.Offset(),
		Alive:             !s.stopped,
	}
	s.pub.Publish(snap)
	if s.cfg.Metrics != nil {
		delta := s.commandsTotal - s.commandsObserved
		s.cfg.Metrics.Observe(s.shardLabel, snap, delta)
		s.commandsObserved = s.commandsTotal
	}
}

// Shutdown stops accepting new work, flushes the AOF regardless of policy,
// and closes it.
func (s *Shard) Shutdown() error {
	close(s.inbox)
	<-s.done
	if err := s.aof.Flush(); err != nil {
		return err
	}
	return s.aof.Close()
}

// AOFPathForShard builds the conventional per-shard filename.
func AOFPathForShard(dir string, id int) string {
	return filepath.Join(dir, "ferrumdb_shard_"+strconv.Itoa(id)+".aof")
}
