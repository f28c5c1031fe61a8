package api

import (
	"context"
	"encoding/json"
	"net/http"
)

type UpdateSystemGeneralRequest struct {
	UICertificate int `json:"ui_certificate"`
}

// SetUICertificate makes the certificate with id the identity of the web UI
// and the REST API. It takes effect after RestartUI.
func (c Client) SetUICertificate(ctx context.Context, id int) error {
	req := &UpdateSystemGeneralRequest{UICertificate: id}
	_, err := put[UpdateSystemGeneralRequest, json.RawMessage](ctx, c, "/system/general", req)
	return err
}

// RestartUI asks the appliance to restart the web UI. The appliance does not
// report when the restart is complete.
func (c Client) RestartUI(ctx context.Context) error {
	_, err := request[json.RawMessage](ctx, c, http.MethodPost, "/system/general/ui_restart", nil, nil)
	return err
}
