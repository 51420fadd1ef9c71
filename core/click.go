package core

import (
	"context"
	"fmt"

	"github.com/huangsam/chartwire/internal/contract"
	"github.com/huangsam/chartwire/schema"
)

// HandleClick runs the configured click action against the bound record.
// Failures are also surfaced through the notifier.
func (c *Container) HandleClick(ctx context.Context) error {
	c.mu.Lock()
	click := c.cfg.OnClick
	recordID := c.recordID
	c.mu.Unlock()

	err := RunClickAction(ctx, c.host, click, recordID)
	if err != nil {
		c.notifier.Error(err.Error())
	}
	return err
}

// RunClickAction executes a click configuration against a record.
// Nothing happens when no record is bound or the action is doNothing.
func RunClickAction(ctx context.Context, host contract.HostDataSource, click schema.ClickConfig, recordID string) error {
	if recordID == "" || click.Action == "" || click.Action == schema.DoNothing {
		return nil
	}
	actions, ok := host.(contract.ActionHost)
	if !ok {
		return fmt.Errorf("host does not support click action %s", click.Action)
	}

	switch click.Action {
	case schema.ShowPage:
		if click.Page == "" {
			return fmt.Errorf("click action %s requires a page", click.Action)
		}
		return actions.OpenPage(ctx, click.Page, recordID)
	case schema.CallProcedure:
		if click.Procedure == "" {
			return fmt.Errorf("click action %s requires a procedure", click.Action)
		}
		if err := actions.ExecuteAction(ctx, click.Procedure, recordID); err != nil {
			return &RetrievalError{Mode: schema.ProcedureMode, Target: click.Procedure, Err: err}
		}
		return nil
	default:
		return fmt.Errorf("unsupported click action %s", click.Action)
	}
}
