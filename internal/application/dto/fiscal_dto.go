package dto

// Formatos de exportación FEC.
const (
	FECFormatTXT  = "txt"
	FECFormatXML  = "xml"
	FECFormatXLSX = "xlsx"
)

// FECFile fichero FEC listo para descargar.
type FECFile struct {
	FileName    string
	ContentType string
	Content     []byte
	Lines       int
	Digest      string // SHA-256 del XML canónico (solo formato xml)
}

// PDFFile documento PDF renderizado.
type PDFFile struct {
	FileName string
	Content  []byte
}
