// Package reconciler makes the certificates on the appliance match the
// desired identity, with as few changes as possible.
package reconciler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dataway/truenas-cert-sync/api"
	"github.com/dataway/truenas-cert-sync/internal/credentials"
	"github.com/dataway/truenas-cert-sync/internal/jobs"
	"github.com/dataway/truenas-cert-sync/internal/logging"
)

// Remote is the subset of the appliance API used by the Reconciler.
// *api.Client implements Remote.
type Remote interface {
	ListCertificateAuthorities(ctx context.Context) ([]api.CertificateAuthority, error)
	CreateCertificateAuthority(ctx context.Context, req *api.CreateCertificateAuthorityRequest) (*api.CertificateAuthority, error)

	ListCertificates(ctx context.Context) ([]api.Certificate, error)
	CreateCertificate(ctx context.Context, req *api.CreateCertificateRequest) (api.JobID, error)
	UpdateCertificate(ctx context.Context, id int, req *api.UpdateCertificateRequest) (api.JobID, error)
	DeleteCertificate(ctx context.Context, id int) (api.JobID, error)

	SetUICertificate(ctx context.Context, id int) error
	RestartUI(ctx context.Context) error
}

type JobAwaiter interface {
	Await(ctx context.Context, id api.JobID) (*jobs.Result, error)
}

type Action string

const (
	ActionNone    Action = "none"
	ActionCreated Action = "created"
	ActionRotated Action = "rotated"
)

// Operation names a mutation of the appliance.
type Operation string

const (
	OperationCreateCA          Operation = "create_ca"
	OperationRenameCertificate Operation = "rename_certificate"
	OperationCreateCertificate Operation = "create_certificate"
	OperationSetUICertificate  Operation = "set_ui_certificate"
	OperationDeleteCertificate Operation = "delete_certificate"
	OperationRestartUI         Operation = "restart_ui"
)

// Result describes the changes made by one call to Reconcile.
type Result struct {
	CAAction   Action
	CertAction Action
	// CertificateID is the id of the new certificate. It is zero when
	// CertAction is ActionNone.
	CertificateID int
	// PreviousName is the name given to the certificate that was replaced,
	// when CertAction is ActionRotated.
	PreviousName string
	// Mutations is the number of changes the appliance completed.
	Mutations int
}

// Converged returns true when the appliance already matched.
func (r *Result) Converged() bool {
	return r.CAAction == ActionNone && r.CertAction == ActionNone
}

type Reconciler struct {
	remote   Remote
	tracker  JobAwaiter
	clock    func() time.Time
	observer func(op Operation)
}

type Option func(r *Reconciler)

// WithClock sets the source of the timestamp used to rename a replaced
// certificate.
func WithClock(clock func() time.Time) Option {
	return func(r *Reconciler) {
		r.clock = clock
	}
}

// WithObserver sets a func that is called after every mutation succeeds.
func WithObserver(observer func(op Operation)) Option {
	return func(r *Reconciler) {
		r.observer = observer
	}
}

func New(remote Remote, tracker JobAwaiter, opts ...Option) *Reconciler {
	r := &Reconciler{
		remote:   remote,
		tracker:  tracker,
		clock:    time.Now,
		observer: func(Operation) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile installs the desired CA when no CA with the same certificate
// exists, and installs the desired certificate as the identity of the web UI
// when no certificate with the same content exists. force installs the
// certificate even when it already exists.
//
// An existing certificate with the desired name is renamed before the new one
// is created, and deleted only after the new certificate is active. Any error
// stops the pass. Nothing that already succeeded is undone.
func (r *Reconciler) Reconcile(ctx context.Context, desired *credentials.Identity, force bool) (*Result, error) {
	result := &Result{CAAction: ActionNone, CertAction: ActionNone}

	if err := r.reconcileCA(ctx, desired, result); err != nil {
		return result, err
	}
	if err := r.reconcileCertificate(ctx, desired, force, result); err != nil {
		return result, err
	}
	return result, nil
}

func (r *Reconciler) reconcileCA(ctx context.Context, desired *credentials.Identity, result *Result) error {
	cas, err := r.remote.ListCertificateAuthorities(ctx)
	if err != nil {
		return fmt.Errorf("list certificate authorities: %w", err)
	}

	for _, ca := range cas {
		if samePEM(ca.Certificate, desired.CAPEM) {
			logging.L.Info().Str("name", ca.Name).Msg("CA certificate already exists")
			return nil
		}
	}

	logging.Infof("creating CA certificate %q", desired.CAName)
	// The appliance stores the CA before it responds, there is no job to wait for.
	_, err = r.remote.CreateCertificateAuthority(ctx, &api.CreateCertificateAuthorityRequest{
		Name:              desired.CAName,
		CreateType:        api.CreateTypeImportedCA,
		AddToTrustedStore: true,
		Certificate:       desired.CAPEM,
	})
	if err != nil {
		return fmt.Errorf("create CA %q: %w", desired.CAName, err)
	}
	r.mutated(result, OperationCreateCA)
	result.CAAction = ActionCreated
	return nil
}

func (r *Reconciler) reconcileCertificate(ctx context.Context, desired *credentials.Identity, force bool, result *Result) error {
	certs, err := r.remote.ListCertificates(ctx)
	if err != nil {
		return fmt.Errorf("list certificates: %w", err)
	}

	if !force {
		for _, cert := range certs {
			if samePEM(cert.Certificate, desired.CertPEM) {
				logging.L.Info().Str("name", cert.Name).Msg("certificate already exists")
				return nil
			}
		}
	}

	var previous *api.Certificate
	for i := range certs {
		if certs[i].Name == desired.CertName {
			previous = &certs[i]
			break
		}
	}

	if previous != nil {
		logging.Infof("a different certificate exists under name %q, rotating", desired.CertName)
		result.PreviousName = fmt.Sprintf("%v_old_%d", desired.CertName, r.clock().Unix())

		jobID, err := r.remote.UpdateCertificate(ctx, previous.ID, &api.UpdateCertificateRequest{Name: result.PreviousName})
		if err != nil {
			return fmt.Errorf("rename certificate %q: %w", previous.Name, err)
		}
		logging.L.Info().Int("job", int(jobID)).Str("name", result.PreviousName).Msg("certificate rename job")
		if _, err := r.tracker.Await(ctx, jobID); err != nil {
			return fmt.Errorf("rename certificate %q: %w", previous.Name, err)
		}
		r.mutated(result, OperationRenameCertificate)
	}

	logging.Infof("creating certificate %q", desired.CertName)
	jobID, err := r.remote.CreateCertificate(ctx, &api.CreateCertificateRequest{
		Name:        desired.CertName,
		CreateType:  api.CreateTypeImportedCertificate,
		Certificate: desired.CertPEM,
		PrivateKey:  desired.KeyPEM,
	})
	if err != nil {
		return fmt.Errorf("create certificate %q: %w", desired.CertName, err)
	}
	logging.L.Info().Int("job", int(jobID)).Msg("certificate creation job")
	jobResult, err := r.tracker.Await(ctx, jobID)
	if err != nil {
		return fmt.Errorf("create certificate %q: %w", desired.CertName, err)
	}
	r.mutated(result, OperationCreateCertificate)

	certID, err := createdID(jobResult)
	if err != nil {
		return fmt.Errorf("create certificate %q: %w", desired.CertName, err)
	}
	result.CertificateID = certID
	result.CertAction = ActionCreated

	logging.L.Info().Int("id", certID).Msg("setting UI certificate")
	if err := r.remote.SetUICertificate(ctx, certID); err != nil {
		return fmt.Errorf("set UI certificate: %w", err)
	}
	r.mutated(result, OperationSetUICertificate)

	if previous != nil {
		result.CertAction = ActionRotated

		logging.L.Info().Str("name", result.PreviousName).Msg("deleting previous certificate")
		jobID, err := r.remote.DeleteCertificate(ctx, previous.ID)
		if err != nil {
			return fmt.Errorf("delete previous certificate %q: %w", result.PreviousName, err)
		}
		logging.L.Info().Int("job", int(jobID)).Msg("certificate deletion job")
		if _, err := r.tracker.Await(ctx, jobID); err != nil {
			return fmt.Errorf("delete previous certificate %q: %w", result.PreviousName, err)
		}
		r.mutated(result, OperationDeleteCertificate)
	}

	logging.Infof("restarting UI")
	if err := r.remote.RestartUI(ctx); err != nil {
		// The web server may drop the connection while it restarts.
		var connErr *api.ConnectionError
		if !errors.As(err, &connErr) {
			return fmt.Errorf("restart UI: %w", err)
		}
		logging.L.Warn().Err(err).Msg("connection closed while restarting UI")
	}
	r.mutated(result, OperationRestartUI)
	return nil
}

func (r *Reconciler) mutated(result *Result, op Operation) {
	result.Mutations++
	r.observer(op)
}

func samePEM(remote, desired string) bool {
	return strings.TrimSpace(remote) == desired
}

func createdID(result *jobs.Result) (int, error) {
	var created struct {
		ID *int `json:"id"`
	}
	if err := json.Unmarshal(result.Result, &created); err != nil {
		return 0, fmt.Errorf("job %d result: %w", result.ID, err)
	}
	if created.ID == nil {
		return 0, fmt.Errorf("job %d result has no certificate id", result.ID)
	}
	return *created.ID, nil
}
