// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"context"
	"fmt"
	"time"

	"github.com/go-a2a/llmkernel/types"
)

// SemanticVersion is the version tag a migratable typed state carries.
type SemanticVersion struct {
	Major, Minor, Patch int
}

// String renders "major.minor.patch".
func (v SemanticVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// ValidationLevel controls how strictly a migration step validates each
// item before and after transforming it.
type ValidationLevel int

const (
	ValidationNone ValidationLevel = iota
	ValidationBasic
	ValidationStrict
	ValidationParanoid
)

// MigrationStatus is the lifecycle of one migration run.
type MigrationStatus int

const (
	MigrationNotStarted MigrationStatus = iota
	MigrationInProgress
	MigrationCompleted
	MigrationFailed
	MigrationRolledBack
)

// String returns the status name.
func (s MigrationStatus) String() string {
	switch s {
	case MigrationNotStarted:
		return "NotStarted"
	case MigrationInProgress:
		return "InProgress"
	case MigrationCompleted:
		return "Completed"
	case MigrationFailed:
		return "Failed"
	case MigrationRolledBack:
		return "RolledBack"
	default:
		return "NotStarted"
	}
}

// Transform converts one item from one schema version to the next.
type Transform func(ctx context.Context, key string, value types.Value) (types.Value, error)

// MigrationPlan configures one migration run.
type MigrationPlan struct {
	From, To        SemanticVersion
	Transforms      []Transform
	DryRun          bool
	CreateBackup    bool
	BatchSize       int
	ValidationLevel ValidationLevel
	RollbackOnError bool
	Deadline        time.Time
}

// MigrationResult is the outcome of running a MigrationPlan.
type MigrationResult struct {
	Status         MigrationStatus
	From, To       SemanticVersion
	StepsCompleted int
	ItemsMigrated  int
	Duration       time.Duration
	Warnings       []string
	Errors         []string
}

// Migrate applies plan's transforms, in order, to every key under scope
// with the given prefix. Each transform runs over the full key set before
// the next begins; a transform error stops the run — rolling back to a
// backup snapshot if CreateBackup was requested and RollbackOnError is
// set, otherwise leaving already-migrated items in place and reporting
// Failed.
func (m *Manager) Migrate(ctx context.Context, scope types.Scope, prefix string, plan MigrationPlan) MigrationResult {
	start := time.Now()
	result := MigrationResult{Status: MigrationInProgress, From: plan.From, To: plan.To}

	keys, err := m.kv.ListKeys(ctx, scope, prefix)
	if err != nil {
		result.Status = MigrationFailed
		result.Errors = append(result.Errors, err.Error())
		result.Duration = time.Since(start)
		return result
	}

	var backup map[string]types.Value
	if plan.CreateBackup {
		backup = make(map[string]types.Value, len(keys))
		for _, k := range keys {
			v, err := m.Get(ctx, scope, k)
			if err == nil {
				backup[k] = v
			}
		}
	}

	for stepIdx, transform := range plan.Transforms {
		if !plan.Deadline.IsZero() && time.Now().After(plan.Deadline) {
			result.Errors = append(result.Errors, "migration deadline exceeded")
			result.Status = MigrationFailed
			break
		}

		batch := plan.BatchSize
		if batch <= 0 {
			batch = len(keys)
		}

		stepFailed := false
		for i := 0; i < len(keys); i += batch {
			end := min(i+batch, len(keys))
			for _, k := range keys[i:end] {
				v, err := m.Get(ctx, scope, k)
				if err != nil {
					continue
				}
				nv, err := transform(ctx, k, v)
				if err != nil {
					result.Errors = append(result.Errors, err.Error())
					stepFailed = true
					continue
				}
				if plan.ValidationLevel >= ValidationBasic {
					if err := validate(k, nv); err != nil {
						result.Warnings = append(result.Warnings, err.Error())
						if plan.ValidationLevel >= ValidationStrict {
							stepFailed = true
							continue
						}
					}
				}
				if !plan.DryRun {
					if err := m.Set(ctx, scope, k, nv, types.ClassOf(k)); err != nil {
						result.Errors = append(result.Errors, err.Error())
						stepFailed = true
						continue
					}
				}
				result.ItemsMigrated++
			}
		}

		result.StepsCompleted = stepIdx + 1
		if stepFailed && plan.RollbackOnError && backup != nil {
			if backup != nil {
				for k, v := range backup {
					_ = m.Set(ctx, scope, k, v, types.ClassOf(k))
				}
			}
			result.Status = MigrationRolledBack
			result.Duration = time.Since(start)
			return result
		}
		if stepFailed {
			result.Status = MigrationFailed
			result.Duration = time.Since(start)
			return result
		}
	}

	if result.Status == MigrationInProgress {
		result.Status = MigrationCompleted
	}
	result.Duration = time.Since(start)
	return result
}
