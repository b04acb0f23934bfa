package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/carbuapp/oficina-api/logger"
	"github.com/carbuapp/oficina-api/utils"
)

const ContentTypePDF = "application/pdf"

// Document is a rendered, self-contained file.
type Document struct {
	FileName    string
	ContentType string
	Content     []byte
}

// DocumentRenderer turns a quote snapshot into a printable document.
type DocumentRenderer interface {
	Render(snapshot *QuoteSnapshot) (*Document, error)
}

// QuoteFileName is the download name of a rendered quote.
func QuoteFileName(number int) string {
	return fmt.Sprintf("orcamento-%d.pdf", number)
}

// Column layout of the item table, in millimetres on A4 with 15mm margins.
const (
	pdfMargin    = 15.0
	pdfLineH     = 6.0
	colDescW     = 100.0
	colQtyW      = 20.0
	colUnitW     = 30.0
	colLineW     = 30.0
	pdfTableW    = colDescW + colQtyW + colUnitW + colLineW
	pdfFontName  = "Helvetica"
	pdfTitleSize = 16
	pdfBodySize  = 11
)

// PDFRenderer renders quotes as A4 PDFs.
type PDFRenderer struct {
	// Now stamps the document creation date; tests pin it.
	Now func() time.Time
}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{Now: time.Now}
}

func (r *PDFRenderer) Render(snapshot *QuoteSnapshot) (*Document, error) {
	if snapshot == nil {
		return nil, validationError("nothing to render")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetCreationDate(r.Now())
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	quote := snapshot.Quote
	pdf.SetTitle(tr(fmt.Sprintf("Orçamento Nº %d", quote.Number)), false)
	pdf.AddPage()

	pdf.SetFont(pdfFontName, "B", pdfTitleSize)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("ORÇAMENTO Nº %d", quote.Number)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(pdfFontName, "", pdfBodySize)
	workshop := snapshot.Workshop
	writeLine(pdf, tr("Oficina: "+workshop.Name))
	writeLine(pdf, tr("Responsável: "+workshop.Responsible))
	writeLine(pdf, tr("Telefone: "+orDash(workshop.Phone)))
	writeLine(pdf, tr("Endereço: "+orDash(workshop.Address)))
	pdf.Ln(4)

	client := snapshot.Client
	vehicle := snapshot.Vehicle
	writeLine(pdf, tr("Cliente: "+client.Name))
	writeLine(pdf, tr("Telefone Cliente: "+orDashPtr(client.Phone)))
	writeLine(pdf, tr(fmt.Sprintf("Veículo: %s - Placa: %s", vehicle.Model, vehicle.Plate)))
	writeLine(pdf, tr(fmt.Sprintf("Ano: %s | Motor: %s", orDashPtr(vehicle.Year), orDashPtr(vehicle.Engine))))
	pdf.Ln(4)

	pdf.SetFont(pdfFontName, "BU", pdfBodySize+1)
	writeLine(pdf, tr("Itens do orçamento:"))
	pdf.Ln(2)

	itemTableHeader(pdf, tr)
	_, pageH := pdf.GetPageSize()
	bottom := pageH - pdfMargin
	for _, item := range snapshot.Items {
		lines := pdf.SplitLines([]byte(tr(item.Description)), colDescW)
		if len(lines) == 0 {
			lines = [][]byte{{}}
		}

		// Rows are kept on one page when they fit on a fresh one; longer
		// descriptions continue line by line on the following pages.
		need := float64(len(lines)) * pdfLineH
		if need > bottom-pdfMargin-2*pdfLineH {
			need = pdfLineH
		}
		if pdf.GetY()+need > bottom {
			pdf.AddPage()
			itemTableHeader(pdf, tr)
		}

		y := pdf.GetY()
		pdf.SetXY(pdfMargin+colDescW, y)
		pdf.CellFormat(colQtyW, pdfLineH, utils.FormatQuantity(item.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(colUnitW, pdfLineH, tr(utils.FormatCurrency(item.UnitPrice)), "", 0, "R", false, 0, "")
		pdf.CellFormat(colLineW, pdfLineH, tr(utils.FormatCurrency(item.LineValue)), "", 0, "R", false, 0, "")
		for _, line := range lines {
			if y+pdfLineH > bottom {
				pdf.AddPage()
				itemTableHeader(pdf, tr)
				y = pdf.GetY()
			}
			pdf.SetXY(pdfMargin, y)
			pdf.CellFormat(colDescW, pdfLineH, string(line), "", 0, "L", false, 0, "")
			y += pdfLineH
		}
		pdf.SetXY(pdfMargin, y+1)
	}

	pdf.Ln(1)
	ruler(pdf)
	pdf.Ln(3)

	pdf.SetFont(pdfFontName, "", pdfBodySize+1)
	pdf.CellFormat(pdfTableW, pdfLineH+1, tr("Subtotal: "+utils.FormatCurrency(quote.Subtotal)), "", 1, "R", false, 0, "")
	pdf.SetFont(pdfFontName, "B", pdfBodySize+1)
	pdf.CellFormat(pdfTableW, pdfLineH+1, tr("Total: "+utils.FormatCurrency(quote.Total)), "", 1, "R", false, 0, "")
	pdf.Ln(12)

	pdf.SetFont(pdfFontName, "", pdfBodySize-1)
	writeLine(pdf, tr("Observações: _________________________________"))
	pdf.Ln(4)
	writeLine(pdf, tr("Assinatura: ___________________________________"))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render quote %d: %w", quote.Number, err)
	}

	return &Document{
		FileName:    QuoteFileName(quote.Number),
		ContentType: ContentTypePDF,
		Content:     buf.Bytes(),
	}, nil
}

func itemTableHeader(pdf *fpdf.Fpdf, tr func(string) string) {
	pdf.SetFont(pdfFontName, "B", pdfBodySize)
	pdf.CellFormat(colDescW, pdfLineH, tr("Descrição"), "", 0, "L", false, 0, "")
	pdf.CellFormat(colQtyW, pdfLineH, "Qtd", "", 0, "R", false, 0, "")
	pdf.CellFormat(colUnitW, pdfLineH, "Unit", "", 0, "R", false, 0, "")
	pdf.CellFormat(colLineW, pdfLineH, "Total", "", 1, "R", false, 0, "")
	ruler(pdf)
	pdf.Ln(2)
	pdf.SetFont(pdfFontName, "", pdfBodySize)
}

func ruler(pdf *fpdf.Fpdf) {
	y := pdf.GetY()
	pdf.Line(pdfMargin, y, pdfMargin+pdfTableW, y)
}

func writeLine(pdf *fpdf.Fpdf, text string) {
	pdf.MultiCell(0, pdfLineH, text, "", "L", false)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func orDashPtr(s *string) string {
	if s == nil {
		return "-"
	}
	return orDash(*s)
}

// ArchivedDocument locates a rendered document stored in the archive.
type ArchivedDocument struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	FileName string `json:"file_name"`
}

// DocumentService renders quotes and, when an archive is configured, stores
// the result for later download.
type DocumentService struct {
	quotes   *QuoteService
	renderer DocumentRenderer
	archive  DocumentArchive
}

// NewDocumentService wires the renderer and the optional archive; a nil
// archive disables Archive.
func NewDocumentService(quotes *QuoteService, renderer DocumentRenderer, archive DocumentArchive) *DocumentService {
	return &DocumentService{quotes: quotes, renderer: renderer, archive: archive}
}

// Render resolves the quote under scope and renders it.
func (s *DocumentService) Render(ctx context.Context, scope Scope, quoteID uint) (*Document, error) {
	snapshot, err := s.quotes.Snapshot(ctx, scope, quoteID)
	if err != nil {
		return nil, err
	}
	doc, err := s.renderer.Render(snapshot)
	if err != nil {
		logger.L().Error("quote rendering failed",
			zap.Uint("workshop_id", scope.WorkshopID),
			zap.Uint("quote_id", quoteID),
			zap.Error(err))
		return nil, &ServiceError{Code: CodeDatabase, Message: "failed to render quote", Err: err}
	}
	return doc, nil
}

// Archive renders the quote, uploads it and returns a presigned URL.
func (s *DocumentService) Archive(ctx context.Context, scope Scope, quoteID uint) (*ArchivedDocument, error) {
	if s.archive == nil {
		return nil, &ServiceError{Code: CodeArchiveDisabled, Message: "document archive is not configured"}
	}
	doc, err := s.Render(ctx, scope, quoteID)
	if err != nil {
		return nil, err
	}

	key := ArchiveKey(scope.WorkshopID, quoteID, doc.FileName)
	if err := s.archive.Upload(ctx, key, doc); err != nil {
		return nil, &ServiceError{Code: CodeDatabase, Message: "failed to archive document", Err: err}
	}
	url, err := s.archive.PresignedURL(ctx, key)
	if err != nil {
		return nil, &ServiceError{Code: CodeDatabase, Message: "failed to sign document url", Err: err}
	}

	logger.L().Info("quote document archived",
		zap.Uint("workshop_id", scope.WorkshopID),
		zap.Uint("quote_id", quoteID),
		zap.String("key", key))
	return &ArchivedDocument{Key: key, URL: url, FileName: doc.FileName}, nil
}
