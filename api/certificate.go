package api

import (
	"context"
	"fmt"
)

type CertificateAuthority struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Certificate string `json:"certificate"`
}

type Certificate struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Certificate string `json:"certificate"`
}

type CreateCertificateAuthorityRequest struct {
	Name              string `json:"name"`
	CreateType        string `json:"create_type"`
	AddToTrustedStore bool   `json:"add_to_trusted_store"`
	Certificate       string `json:"certificate"`
}

type CreateCertificateRequest struct {
	Name        string `json:"name"`
	CreateType  string `json:"create_type"`
	Certificate string `json:"certificate"`
	PrivateKey  string `json:"privatekey"`
}

type UpdateCertificateRequest struct {
	Name string `json:"name"`
}

func (c Client) ListCertificateAuthorities(ctx context.Context) ([]CertificateAuthority, error) {
	res, err := get[[]CertificateAuthority](ctx, c, "/certificateauthority", nil)
	if err != nil {
		return nil, err
	}
	return *res, nil
}

// CreateCertificateAuthority does not start a job. The appliance responds
// with the new entry once it has been stored.
func (c Client) CreateCertificateAuthority(ctx context.Context, req *CreateCertificateAuthorityRequest) (*CertificateAuthority, error) {
	return post[CreateCertificateAuthorityRequest, CertificateAuthority](ctx, c, "/certificateauthority", req)
}

func (c Client) ListCertificates(ctx context.Context) ([]Certificate, error) {
	res, err := get[[]Certificate](ctx, c, "/certificate", nil)
	if err != nil {
		return nil, err
	}
	return *res, nil
}

// CreateCertificate starts a job that imports the certificate. The result of
// the job is the new Certificate.
func (c Client) CreateCertificate(ctx context.Context, req *CreateCertificateRequest) (JobID, error) {
	id, err := post[CreateCertificateRequest, JobID](ctx, c, "/certificate", req)
	if err != nil {
		return 0, err
	}
	return *id, nil
}

// UpdateCertificate starts a job that changes the certificate with id.
func (c Client) UpdateCertificate(ctx context.Context, id int, req *UpdateCertificateRequest) (JobID, error) {
	jobID, err := put[UpdateCertificateRequest, JobID](ctx, c, fmt.Sprintf("/certificate/id/%d", id), req)
	if err != nil {
		return 0, err
	}
	return *jobID, nil
}

// DeleteCertificate starts a job that removes the certificate with id.
func (c Client) DeleteCertificate(ctx context.Context, id int) (JobID, error) {
	jobID, err := delete[JobID](ctx, c, fmt.Sprintf("/certificate/id/%d", id))
	if err != nil {
		return 0, err
	}
	return *jobID, nil
}

