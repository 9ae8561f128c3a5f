package worksheets

import "github.com/JaimeStill/worksheet-lab/pkg/openapi"

type spec struct {
	Upload   *openapi.Operation
	List     *openapi.Operation
	Find     *openapi.Operation
	Popular  *openapi.Operation
	Recent   *openapi.Operation
	Download *openapi.Operation
	Edit     *openapi.Operation
	Delete   *openapi.Operation
}

var Spec = spec{
	Upload: &openapi.Operation{
		Summary:     "Upload worksheet",
		Description: "Store a worksheet file and create its record. PDFs have page count extracted automatically.",
		RequestBody: openapi.RequestBodyMultipart(&openapi.Schema{
			Type:     "object",
			Required: []string{"file"},
			Properties: map[string]*openapi.Schema{
				"file":        {Type: "string", Format: "binary", Description: "Worksheet file"},
				"title":       {Type: "string"},
				"description": {Type: "string"},
				"category":    {Type: "string"},
				"subject":     {Type: "string", Description: "Defaults to Other when blank"},
				"tags":        {Type: "string", Description: "Comma-separated tags", Example: "math,grade3"},
				"grade":       {Type: "string"},
				"ageGroup":    {Type: "string"},
			},
		}),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Worksheet uploaded", "WorksheetResult"),
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
			413: {Description: "File too large"},
			500: openapi.ResponseRef("ServerError"),
		},
		Security: openapi.BearerAuth(),
	},
	List: &openapi.Operation{
		Summary:     "List worksheets",
		Description: "List worksheets newest first. A filter value of All matches everything.",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("subject", "string", "Alias for category; ignored when category is set", false),
			openapi.QueryParam("category", "string", "Filter by category", false),
			openapi.QueryParam("grade", "string", "Filter by grade", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Worksheets", "WorksheetList"),
		},
	},
	Find: &openapi.Operation{
		Summary: "Find worksheet",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Worksheet ID"),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Worksheet details", "Worksheet"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Popular: &openapi.Operation{
		Summary:     "Popular worksheets",
		Description: "The most recently uploaded worksheets",
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Worksheets", "WorksheetList"),
		},
	},
	Recent: &openapi.Operation{
		Summary:     "Recent worksheets",
		Description: "The most recently uploaded worksheets",
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Worksheets", "WorksheetList"),
		},
	},
	Download: &openapi.Operation{
		Summary:     "Download worksheet",
		Description: "Stream the worksheet file as an attachment named after the original upload",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Worksheet ID"),
		},
		Responses: map[int]*openapi.Response{
			200: {Description: "File contents"},
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Edit: &openapi.Operation{
		Summary:     "Edit worksheet",
		Description: "Replace the supplied descriptive fields. Tags are replaced, not merged.",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Worksheet ID"),
		},
		RequestBody: openapi.RequestBodyJSON("EditWorksheetCommand", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Worksheet updated", "WorksheetResult"),
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
			404: openapi.ResponseRef("NotFound"),
		},
		Security: openapi.BearerAuth(),
	},
	Delete: &openapi.Operation{
		Summary:     "Delete worksheet",
		Description: "Delete the worksheet record and its stored files",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Worksheet ID"),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Worksheet deleted", "WorksheetResult"),
			401: openapi.ResponseRef("Unauthorized"),
			404: openapi.ResponseRef("NotFound"),
		},
		Security: openapi.BearerAuth(),
	},
}

func (spec) Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Worksheet": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"_id":           {Type: "string"},
				"title":         {Type: "string"},
				"description":   {Type: "string"},
				"category":      {Type: "string"},
				"subject":       {Type: "string"},
				"tags":          {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"grade":         {Type: "string"},
				"ageGroup":      {Type: "string"},
				"fileUrl":       {Type: "string", Description: "Public URL of the stored file"},
				"fileName":      {Type: "string", Description: "Storage key"},
				"originalName":  {Type: "string", Description: "Filename supplied at upload"},
				"contentType":   {Type: "string"},
				"sizeBytes":     {Type: "integer", Format: "int64"},
				"pageCount":     {Type: "integer", Description: "Page count (PDFs only)"},
				"thumbnailUrl":  {Type: "string"},
				"thumbnailName": {Type: "string"},
				"uploadDate":    {Type: "string", Format: "date-time"},
			},
		},
		"WorksheetList": {
			Type:  "array",
			Items: openapi.SchemaRef("Worksheet"),
		},
		"WorksheetResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"success":   {Type: "boolean"},
				"worksheet": openapi.SchemaRef("Worksheet"),
			},
		},
		"EditWorksheetCommand": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"title":       {Type: "string"},
				"description": {Type: "string"},
				"category":    {Type: "string"},
				"tags":        {Type: "string", Description: "Comma-separated tags"},
				"grade":       {Type: "string"},
			},
		},
	}
}
