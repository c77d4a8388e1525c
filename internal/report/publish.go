package report

import (
	"context"
	"errors"
	"io"

	"csreport/internal/artifact"
	"csreport/internal/domain"
	"csreport/internal/sheet"
	"csreport/internal/storage/sqlite"

	"go.uber.org/zap"
)

type Workbook struct {
	Path   string
	Tables []domain.Table
}

type Image struct {
	Path string
	Data []byte
}

// Bundle is everything one run produces, fully built in memory.
type Bundle struct {
	Title     string
	Comment   string
	Workbooks []Workbook
	Images    []Image
}

type Published struct {
	Files       []string
	Sheets      map[string][]string // workbook path -> sheet names written
	SQLitePath  string
	Delivered   bool
	DeliveryErr error
}

type Deliverer interface {
	Deliver(ctx context.Context, title, comment string, files []string) error
}

type Publisher struct {
	sqlitePath string
	deliverer  Deliverer
	log        *zap.Logger
}

// NewPublisher returns a publisher that also exports to sqlitePath when it
// is set and hands the files to d when d is not nil.
func NewPublisher(sqlitePath string, d Deliverer, log *zap.Logger) *Publisher {
	return &Publisher{sqlitePath: sqlitePath, deliverer: d, log: log}
}

// Publish stages every workbook, image and the optional SQLite export, then
// moves them into place together: either all of them land or none does.
// Any write failure is returned as a *domain.OutputError. Delivery failures
// are reported on Published and do not fail the run.
func (p *Publisher) Publish(ctx context.Context, b Bundle) (Published, error) {
	out := Published{Sheets: map[string][]string{}}
	if len(b.Workbooks) == 0 {
		return out, &domain.OutputError{Err: errors.New("nothing to publish")}
	}

	var batch artifact.Batch
	defer batch.Discard()

	var files []string
	var exported []domain.Table
	for _, wb := range b.Workbooks {
		names, err := sheet.StageWorkbook(&batch, wb.Path, wb.Tables)
		if err != nil {
			return out, err
		}
		files = append(files, wb.Path)
		out.Sheets[wb.Path] = names
		for i, t := range wb.Tables {
			t.Name = names[i]
			exported = append(exported, t)
		}
	}
	for _, img := range b.Images {
		data := img.Data
		if err := batch.Stage(img.Path, func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}); err != nil {
			return out, err
		}
		files = append(files, img.Path)
	}
	if p.sqlitePath != "" {
		// table names must be unique across workbooks as well
		names := make([]string, len(exported))
		for i, t := range exported {
			names[i] = t.Name
		}
		for i, n := range sheet.UniqueSheetNames(names) {
			exported[i].Name = n
		}
		if err := sqlite.Stage(&batch, p.sqlitePath, exported); err != nil {
			return out, err
		}
	}

	if err := batch.Commit(); err != nil {
		return out, err
	}
	out.Files = files
	for _, f := range files {
		p.log.Info("output written", zap.String("path", f), zap.Strings("sheets", out.Sheets[f]))
	}
	if p.sqlitePath != "" {
		out.SQLitePath = p.sqlitePath
		p.log.Info("sqlite export written", zap.String("path", p.sqlitePath), zap.Int("tables", len(exported)))
	}

	if p.deliverer != nil {
		if err := p.deliverer.Deliver(ctx, b.Title, b.Comment, out.Files); err != nil {
			out.DeliveryErr = err
			p.log.Warn("delivery failed", zap.Error(err))
		} else {
			out.Delivered = true
		}
	}
	return out, nil
}
