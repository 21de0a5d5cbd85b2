package store

import (
	"context"
	"errors"
)

func intPtr(v int) *int { return &v }

func i64Ptr(v int64) *int64 { return &v }

// demoTasks are the sample tasks loaded on demand. Category and status IDs
// refer to the seeded defaults. All rows carry the demo flag so they can be
// listed separately and erased in bulk without touching real data.
var demoTasks = []NewTask{
	{ID: "CMINTDEV-242", Description: "Set up anti-virus for EC2 servers",
		CategoryID: i64Ptr(1), StatusID: i64Ptr(4), Priority: intPtr(2),
		Notes: "Need to research compatible options for our EC2 setup", IsDemo: true},
	{ID: "CMINTDEV-32", Description: "OMV hardware inventory",
		CategoryID: i64Ptr(1), StatusID: i64Ptr(4), Priority: intPtr(3),
		Notes: "Document all hardware specs and serial numbers", IsDemo: true},
	{ID: "CMINTDEV-271", Description: "Set up HTTPS license for OVTime",
		CategoryID: i64Ptr(1), StatusID: i64Ptr(3), Priority: intPtr(1),
		Notes: "Current certificate expires next month", IsDemo: true},
	{ID: "CMINTDEV-23", Description: "Review security groups open ports",
		CategoryID: i64Ptr(2), StatusID: i64Ptr(1), Priority: intPtr(3), IsDemo: true},
	{ID: "CMINTDEV-33", Description: "Routine security review",
		CategoryID: i64Ptr(2), StatusID: i64Ptr(2), Priority: intPtr(2),
		Notes: "Waiting for new security policy to be approved", IsDemo: true},
	{ID: "CMINTDEV-215", Description: "Create company privacy policy",
		CategoryID: i64Ptr(3), StatusID: i64Ptr(4), Priority: intPtr(2),
		Notes: "Draft ready for review by legal team", IsDemo: true},
	{ID: "CMINTDEV-216", Description: "Create company information security policy",
		CategoryID: i64Ptr(3), StatusID: i64Ptr(4), Priority: intPtr(2),
		Notes: "Working with security team on requirements", IsDemo: true},
	{ID: "CMINTDEV-8", Description: "Put a plan for cross training/backup for all dev projects",
		CategoryID: i64Ptr(5), StatusID: i64Ptr(4), Priority: intPtr(2),
		Notes: "Identify critical projects and single points of knowledge", IsDemo: true},
	{ID: "CMINTDEV-319", Description: "Review AWS bill and suggest ways to reduce costs",
		CategoryID: i64Ptr(6), StatusID: i64Ptr(4), Priority: intPtr(3),
		Notes: "Focus on unused resources and right-sizing instances", IsDemo: true},
}

// LoadDemoData inserts the sample tasks, skipping IDs that already exist,
// and returns the number of tasks inserted.
func (s *Store) LoadDemoData(ctx context.Context) (int, error) {
	inserted := 0
	for _, nt := range demoTasks {
		err := s.CreateTask(ctx, nt)
		if errors.Is(err, ErrTaskExists) {
			continue
		}
		if err != nil {
			s.log.Warn().Err(err).Str("task_id", nt.ID).Msg("could not create demo task")
			continue
		}
		inserted++
	}
	return inserted, nil
}

// ClearDemoData removes demo tasks and their history without touching real
// data.
func (s *Store) ClearDemoData(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return &StoreError{Op: "ClearDemoData", Err: err}
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"DELETE FROM task_history WHERE task_id IN (SELECT id FROM tasks WHERE is_demo = 1)")
	if err != nil {
		return &StoreError{Op: "ClearDemoData", Err: err}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE is_demo = 1"); err != nil {
		return &StoreError{Op: "ClearDemoData", Err: err}
	}

	return tx.Commit()
}

// ClearAllData removes every task and all history. Categories and statuses
// are kept so the defaults survive.
func (s *Store) ClearAllData(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return &StoreError{Op: "ClearAllData", Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM task_history"); err != nil {
		return &StoreError{Op: "ClearAllData", Err: err}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
		return &StoreError{Op: "ClearAllData", Err: err}
	}

	return tx.Commit()
}
