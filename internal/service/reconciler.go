package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/dtroode/greenhouse-admin/internal/logger"
	"github.com/dtroode/greenhouse-admin/internal/model"
)

// Provisioner re-runs device state provisioning for a committed client.
type Provisioner interface {
	Provision(ctx context.Context, authUID string) (model.ApprovalResult, error)
}

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	Checked        int
	Provisioned    int
	Escalated      int
	OrphansRemoved int
}

// ReconcilerConfig tunes the reconciler.
type ReconcilerConfig struct {
	DeviceRoot     string
	Interval       time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	SweepOrphans   bool
}

// Reconciler periodically brings the tree store in line with the persisted
// clients: missing device states are provisioned and orphans are removed.
type Reconciler struct {
	documents   model.DocumentStore
	trees       model.TreeStore
	provisioner Provisioner
	logger      *logger.Logger
	conf        ReconcilerConfig

	mu      sync.Mutex
	started bool
	stopped bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewReconciler creates a reconciler. A non-positive interval defaults to one minute.
func NewReconciler(
	documents model.DocumentStore,
	trees model.TreeStore,
	provisioner Provisioner,
	logger *logger.Logger,
	conf ReconcilerConfig,
) *Reconciler {
	if conf.Interval <= 0 {
		conf.Interval = time.Minute
	}
	if conf.MaxRetries < 0 {
		conf.MaxRetries = 0
	}
	if conf.InitialBackoff <= 0 {
		conf.InitialBackoff = 500 * time.Millisecond
	}
	if conf.DeviceRoot == "" {
		conf.DeviceRoot = model.DefaultDeviceRoot
	}

	return &Reconciler{
		documents:   documents,
		trees:       trees,
		provisioner: provisioner,
		logger:      logger,
		conf:        conf,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start runs a pass immediately and then on every tick until Stop. It is a
// no-op after the first call or once stopped.
func (r *Reconciler) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.stopped {
		return
	}
	r.started = true
	go r.run()
	r.logger.Info("Reconciler: started", "interval", r.conf.Interval)
}

// Stop waits for an in-progress pass to finish. It returns at once if the
// reconciler was never started.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	started := r.started
	if !r.stopped {
		r.stopped = true
		close(r.stopCh)
	}
	r.mu.Unlock()

	if started {
		<-r.doneCh
	}
	r.logger.Info("Reconciler: stopped")
}

func (r *Reconciler) run() {
	defer close(r.doneCh)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-r.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(r.conf.Interval)
	defer ticker.Stop()

	r.tick(ctx)

	for {
		select {
		case <-ticker.C:
			r.tick(ctx)
		case <-r.stopCh:
			return
		}
	}
}

func (r *Reconciler) tick(ctx context.Context) {
	report, err := r.Reconcile(ctx)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Error("Reconciler: pass failed", "error", err)
		}
		return
	}
	r.logger.Debug("Reconciler: pass completed",
		"checked", report.Checked,
		"provisioned", report.Provisioned,
		"escalated", report.Escalated,
		"orphans_removed", report.OrphansRemoved)
}

// Reconcile runs a single pass. Device state keys are listed before clients so
// a state written after its client commit is never taken for an orphan.
func (r *Reconciler) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport

	keys, err := r.trees.Keys(ctx, r.conf.DeviceRoot)
	if err != nil {
		return report, err
	}
	states := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		states[k] = struct{}{}
	}

	docs, err := r.documents.List(ctx, model.CollectionClients)
	if err != nil {
		return report, err
	}

	clients := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		client, err := model.ClientFromDocument(doc)
		if err != nil {
			r.logger.Warn("Reconciler: skipping undecodable client", "id", doc.ID, "error", err)
			continue
		}
		clients[client.AuthUID] = struct{}{}
		report.Checked++

		if _, ok := states[client.AuthUID]; ok {
			continue
		}

		if err := r.provisionWithRetry(ctx, client.AuthUID); err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			if clientVanished(err) {
				continue
			}
			report.Escalated++
			r.logger.Error("Reconciler: device state needs manual remediation",
				"auth_uid", client.AuthUID,
				"attempts", r.conf.MaxRetries+1,
				"error", err)
			continue
		}
		report.Provisioned++
	}

	if !r.conf.SweepOrphans {
		return report, nil
	}

	for _, key := range keys {
		if _, ok := clients[key]; ok {
			continue
		}
		path := model.DeviceStatePath(r.conf.DeviceRoot, key)
		if err := r.trees.Remove(ctx, path); err != nil {
			r.logger.Error("Reconciler: failed to remove orphan device state", "auth_uid", key, "error", err)
			continue
		}
		report.OrphansRemoved++
		r.logger.Info("Reconciler: removed orphan device state", "auth_uid", key)
	}

	return report, nil
}

func (r *Reconciler) provisionWithRetry(ctx context.Context, authUID string) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.conf.InitialBackoff
	policy.MaxElapsedTime = 0

	retry := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(r.conf.MaxRetries)), ctx)

	return backoff.RetryNotify(func() error {
		_, err := r.provisioner.Provision(ctx, authUID)
		if err == nil {
			return nil
		}
		// The client vanished between listing and provisioning.
		if errors.Is(err, model.ErrNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}, retry, func(err error, wait time.Duration) {
		r.logger.Warn("Reconciler: provisioning attempt failed", "auth_uid", authUID, "retry_in", wait, "error", err)
	})
}

// clientVanished reports whether the client was deleted between listing and
// provisioning. A read back that finds no device state is a ProvisioningError
// and is retried instead.
func clientVanished(err error) bool {
	var perr *model.ProvisioningError
	if errors.As(err, &perr) {
		return false
	}
	return errors.Is(err, model.ErrNotFound)
}
