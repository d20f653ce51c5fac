package views

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
	"net/url"

	"github.com/i474232898/greenhouse-dashboard/internal/greenhouse"
	"github.com/i474232898/greenhouse-dashboard/internal/selector"
)

//go:embed templates/*.html
var viewsFS embed.FS

var dashboardTmpl *template.Template

// loadTemplatesFromFS loads dashboard templates from the given fs and dir.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	dashboardTmpl, err = template.ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates parses the embedded templates. Call once during startup; if
// it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// DashboardData is the view model of the dashboard page.
type DashboardData struct {
	Title        string
	Initializing bool
	Loading      bool
	Disabled     bool
	NoData       bool
	Current      string
	Options      []selector.Option[greenhouse.FileDescriptor]
	Width        string
	AxisTitle    string
	ChartURL     string
}

// NewDashboardData maps a controller view onto the page model.
func NewDashboardData(title string, v greenhouse.View) DashboardData {
	files := selector.New(v.Files, func(f greenhouse.FileDescriptor) string { return f.DisplayDate })
	if v.SelectedIndex >= 0 {
		_ = files.Select(v.SelectedIndex)
	}

	data := DashboardData{
		Title:        title,
		Initializing: v.State == greenhouse.StateLoading && len(v.Files) == 0,
		Loading:      v.Loading,
		Disabled:     files.Disabled(),
		NoData:       v.State == greenhouse.StateEmpty,
		Current:      files.Current(),
		Options:      files.Options(),
		Width:        v.Presentation.Width.String(),
		AxisTitle:    v.Presentation.AxisTitle,
	}
	if f, ok := v.SelectedFile(); ok {
		data.ChartURL = ChartURL(f.FileName)
	}
	return data
}

// ChartURL is where the rendered chart of fileName is served.
func ChartURL(fileName string) string {
	return "/api/v1/files/" + url.PathEscape(fileName) + "/chart.svg"
}

func RenderDashboard(w io.Writer, data *DashboardData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "dashboard.html", data)
}
