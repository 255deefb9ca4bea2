package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/arkival/arkival/internal/db"
)

// ExecBatch applies the operations inside one MULTI/EXEC transaction built
// in a single DoMulti round-trip, so the whole batch commits or none of it
// does. A queue error makes the server abort the transaction at EXEC
// (EXECABORT), which keeps partial writes invisible without an explicit
// DISCARD on our side.
func (s *Store) ExecBatch(ctx context.Context, ops []db.BatchOp) error {
	if len(ops) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, 0, len(ops)+2)
	cmds = append(cmds, s.b().Multi().Build())
	for i := range ops {
		cmd, err := s.buildOp(&ops[i])
		if err != nil {
			return fmt.Errorf("batch op %d: %w", i, err)
		}
		cmds = append(cmds, cmd)
	}
	cmds = append(cmds, s.b().Exec().Build())

	results := s.client.DoMulti(ctx, cmds...)
	for _, res := range results {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpExec, Err: err}
		}
	}
	return nil
}

func (s *Store) buildOp(op *db.BatchOp) (rueidis.Completed, error) {
	switch op.Kind {
	case db.BatchHSet:
		cmd := s.b().Hset().Key(op.Key).FieldValue()
		for k, v := range op.Fields {
			cmd = cmd.FieldValue(k, v)
		}
		return cmd.Build(), nil
	case db.BatchHSetNX:
		return s.b().Hsetnx().Key(op.Key).Field(op.Field).Value(op.Value).Build(), nil
	case db.BatchSAdd:
		return s.b().Sadd().Key(op.Key).Member(op.Members...).Build(), nil
	case db.BatchSRem:
		return s.b().Srem().Key(op.Key).Member(op.Members...).Build(), nil
	case db.BatchDel:
		return s.b().Del().Key(op.Key).Build(), nil
	default:
		return rueidis.Completed{}, fmt.Errorf("unknown batch op kind %q", op.Kind)
	}
}
