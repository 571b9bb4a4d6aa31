package api

import "github.com/JaimeStill/qpdf-utils/pkg/openapi"

type spec struct {
	Info    *openapi.Operation
	Extract *openapi.Operation
	Split   *openapi.Operation
	Append  *openapi.Operation
	Decrypt *openapi.Operation
	Encrypt *openapi.Operation
}

// Schemas lists the component schemas referenced by Spec.
var Schemas = map[string]*openapi.Schema{
	"Info": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"pages":     {Type: "integer", Description: "Number of pages"},
			"encrypted": {Type: "boolean", Description: "Whether the document carries an encryption dictionary"},
		},
		Required: []string{"pages", "encrypted"},
	},
}

func sourceFields(extra map[string]*openapi.Schema) map[string]*openapi.Schema {
	fields := map[string]*openapi.Schema{
		"file": openapi.FileField("Source PDF"),
	}
	for name, field := range extra {
		fields[name] = field
	}
	return fields
}

var passwordField = &openapi.Schema{Type: "string", Description: "Password that decrypts the source"}

func errorResponses(responses map[int]*openapi.Response) map[int]*openapi.Response {
	responses[400] = openapi.ResponseRef("BadRequest")
	responses[413] = openapi.ResponseRef("TooLarge")
	responses[500] = openapi.ResponseRef("ProcessingError")
	return responses
}

// Spec documents the PDF endpoints.
var Spec = spec{
	Info: &openapi.Operation{
		Summary:     "Inspect document",
		Description: "Report the page count and whether the document is encrypted",
		RequestBody: openapi.RequestBodyMultipart(sourceFields(map[string]*openapi.Schema{
			"password": passwordField,
		}), "file"),
		Responses: errorResponses(map[int]*openapi.Response{
			200: openapi.ResponseJSON("Document info", "Info"),
		}),
	},
	Extract: &openapi.Operation{
		Summary:     "Extract pages",
		Description: "Write an inclusive page range of the source to a new PDF",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("pages", "string", "Page or range, e.g. 3 or 2-4", true),
		},
		RequestBody: openapi.RequestBodyMultipart(sourceFields(map[string]*openapi.Schema{
			"password": passwordField,
		}), "file"),
		Responses: errorResponses(map[int]*openapi.Response{
			200: openapi.ResponseBinary("Extracted pages", contentTypePDF),
		}),
	},
	Split: &openapi.Operation{
		Summary:     "Split document",
		Description: "Write every page to its own PDF and return them as a zip archive",
		RequestBody: openapi.RequestBodyMultipart(sourceFields(map[string]*openapi.Schema{
			"password": passwordField,
		}), "file"),
		Responses: errorResponses(map[int]*openapi.Response{
			200: openapi.ResponseBinary("One PDF per page", contentTypeZip),
		}),
	},
	Append: &openapi.Operation{
		Summary:     "Append documents",
		Description: "Concatenate the source with each input in order. Passwords pair with inputs by position.",
		RequestBody: openapi.RequestBodyMultipart(sourceFields(map[string]*openapi.Schema{
			"password":  passwordField,
			"files":     {Type: "array", Items: openapi.FileField("Input PDF"), Description: "Inputs appended after the source"},
			"passwords": {Type: "array", Items: &openapi.Schema{Type: "string"}, Description: "Input passwords, in input order"},
		}), "file", "files"),
		Responses: errorResponses(map[int]*openapi.Response{
			200: openapi.ResponseBinary("Merged document", contentTypePDF),
			403: openapi.ResponseRef("Forbidden"),
		}),
	},
	Decrypt: &openapi.Operation{
		Summary:     "Decrypt document",
		Description: "Remove encryption using the supplied password",
		RequestBody: openapi.RequestBodyMultipart(sourceFields(map[string]*openapi.Schema{
			"password": passwordField,
		}), "file"),
		Responses: errorResponses(map[int]*openapi.Response{
			200: openapi.ResponseBinary("Decrypted document", contentTypePDF),
			403: openapi.ResponseRef("Forbidden"),
		}),
	},
	Encrypt: &openapi.Operation{
		Summary:     "Encrypt document",
		Description: "Encrypt the source with user and owner passwords",
		RequestBody: openapi.RequestBodyMultipart(sourceFields(map[string]*openapi.Schema{
			"user_password":  {Type: "string", Description: "Password required to open the document"},
			"owner_password": {Type: "string", Description: "Password granting full permissions"},
			"key_length":     {Type: "integer", Enum: []any{40, 128, 256}, Description: "Key length in bits (default 256)"},
		}), "file"),
		Responses: errorResponses(map[int]*openapi.Response{
			200: openapi.ResponseBinary("Encrypted document", contentTypePDF),
		}),
	},
}
