package parsers

import (
	"errors"
	"io"

	"github.com/aliranalvi/bond-wise-insight/src/models"
)

// Sentinel errors surfaced by the parsing pipeline. Handlers map these to
// user-visible upload failures.
var (
	// ErrHeaderNotFound means the investment sheet has no recognizable header
	// row. Fatal: without the header no column can be located.
	ErrHeaderNotFound = errors.New("investment sheet header not found")

	// ErrNoValidRecords means header location succeeded but every data row was
	// rejected. Fatal: the upload produced nothing.
	ErrNoValidRecords = errors.New("no valid bond data found")
)

// SheetRows is a workbook reduced to the two sheets this system understands.
// The repayment sheet is optional; Repayment stays nil when absent.
type SheetRows struct {
	Investment [][]models.Cell
	Repayment  [][]models.Cell
}

// WorkbookReader turns an uploaded spreadsheet into raw cell rows. The
// spreadsheet library is ours to wrap here; everything downstream sees only
// []models.Cell rows.
type WorkbookReader interface {
	Read(file io.Reader) (*SheetRows, error)
}
