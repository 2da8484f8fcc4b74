package screens

import (
	"context"
	"io"
	"net/url"

	"github.com/jrsteele09/go-auth-shell/apiclient"
)

type ReportsAPI interface {
	Reports(ctx context.Context, query url.Values) apiclient.Response[apiclient.Aggregate]
}

// ManagerReports shows the reports available to managers and admins.
type ManagerReports struct {
	api     ReportsAPI
	Reports Loader[apiclient.Aggregate]
}

func NewManagerReports(api ReportsAPI) *ManagerReports {
	return &ManagerReports{api: api}
}

func (m *ManagerReports) Load(ctx context.Context, query url.Values) bool {
	return m.Reports.Execute(ctx, func(ctx context.Context) apiclient.Response[apiclient.Aggregate] {
		return m.api.Reports(ctx, query)
	})
}

func (m *ManagerReports) Render(w io.Writer) error {
	if m.Reports.Loading() {
		return RenderLoading(w)
	}
	heading(w, "Reports")
	if err := RenderError(w, m.Reports.Error()); err != nil {
		return err
	}
	data, ok := m.Reports.Data()
	if !ok {
		return nil
	}
	return renderFields(w, data.Body())
}
