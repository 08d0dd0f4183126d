package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"vexa/services"
)

// ReconcileWorker periodically heals the two denormalized membership
// relations. Project member rows and user project references are written as
// separate operations, so a crash between the writes can leave the mirrors
// asymmetric; this pass detects both directions and repairs them. It also
// sweeps expired invitations. Every repair is idempotent, so overlapping runs
// and retries are harmless.
type ReconcileWorker struct {
	Mirror  services.MirrorStore
	Users   services.UserStore
	Invites services.InvitationStore
	Logger  *logrus.Logger

	Interval time.Duration
}

func NewReconcileWorker(mirror services.MirrorStore, users services.UserStore, invites services.InvitationStore, logger *logrus.Logger) *ReconcileWorker {
	return &ReconcileWorker{
		Mirror:   mirror,
		Users:    users,
		Invites:  invites,
		Logger:   logger,
		Interval: 5 * time.Minute,
	}
}

func (w *ReconcileWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	select {
	case <-ctx.Done():
		return
	case <-time.After(10 * time.Second):
	}

	w.Logger.Info("Reconcile worker started")

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("Reconcile worker shutting down...")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single reconciliation and sweep pass.
func (w *ReconcileWorker) RunOnce(ctx context.Context) {
	if err := w.reconcileMirrors(ctx); err != nil {
		w.Logger.WithError(err).Error("Mirror reconciliation failed")
	}

	swept, err := w.Invites.DeleteExpired(ctx, time.Now())
	if err != nil {
		w.Logger.WithError(err).Error("Expired invitation sweep failed")
	} else if swept > 0 {
		w.Logger.WithField("count", swept).Info("Swept expired invitations")
	}
}

// reconcileMirrors makes user project references agree with the project
// rosters. The roster side is authoritative: a member row without a mirror
// gains one, a mirror without a member row is removed.
func (w *ReconcileWorker) reconcileMirrors(ctx context.Context) error {
	members, err := w.Mirror.ListMemberPairs(ctx)
	if err != nil {
		return err
	}
	mirrors, err := w.Mirror.ListUserProjectPairs(ctx)
	if err != nil {
		return err
	}

	memberSet := make(map[services.MemberPair]bool, len(members))
	for _, p := range members {
		memberSet[p] = true
	}
	mirrorSet := make(map[services.MemberPair]bool, len(mirrors))
	for _, p := range mirrors {
		mirrorSet[p] = true
	}

	for _, p := range members {
		if mirrorSet[p] {
			continue
		}
		if err := w.Users.AddUserProject(ctx, p.UserID, p.ProjectID); err != nil {
			w.Logger.WithFields(logrus.Fields{
				"user_id":    p.UserID,
				"project_id": p.ProjectID,
			}).WithError(err).Error("Failed to restore missing project reference")
			continue
		}
		w.Logger.WithFields(logrus.Fields{
			"user_id":    p.UserID,
			"project_id": p.ProjectID,
		}).Info("Restored missing project reference")
	}

	for _, p := range mirrors {
		if memberSet[p] {
			continue
		}
		if err := w.Users.RemoveUserProject(ctx, p.UserID, p.ProjectID); err != nil {
			w.Logger.WithFields(logrus.Fields{
				"user_id":    p.UserID,
				"project_id": p.ProjectID,
			}).WithError(err).Error("Failed to remove orphaned project reference")
			continue
		}
		w.Logger.WithFields(logrus.Fields{
			"user_id":    p.UserID,
			"project_id": p.ProjectID,
		}).Info("Removed orphaned project reference")
	}

	return nil
}
