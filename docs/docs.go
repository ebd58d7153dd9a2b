// Package docs registra la especificación OpenAPI de la API en swag.
// swagger.json sirve a la vez de plantilla de swag y de fichero de la UI en /docs.
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed swagger.json
var docTemplate string

// SwaggerInfo metadatos de la API.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "DentalCloud Fiscal API",
	Description:      "Certificados, firma RSA-PSS, FEC, periodos fiscales sellados, auditoría encadenada y documentos fiscales PDF para consultas dentales.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
