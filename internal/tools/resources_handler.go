package tools

import (
	"github.com/elad12390/bfl-api-mcp/internal/mcp"
)

// expertResources lists the static prompting guides this server exposes.
var expertResources = []map[string]interface{}{
	{
		"uri":         "bfl://experts/prompt-crafting",
		"name":        "Flux Prompt Crafting Guide",
		"description": "How to structure prompts for the Flux model family: subject, style, composition, lighting.",
		"mimeType":    "text/plain",
	},
	{
		"uri":         "bfl://experts/photorealism",
		"name":        "Photorealism Expert",
		"description": "Techniques for photorealistic output: camera terms, film stocks, realistic lighting.",
		"mimeType":    "text/plain",
	},
	{
		"uri":         "bfl://experts/kontext-editing",
		"name":        "Kontext Editing Expert",
		"description": "How to phrase in-context editing instructions for the Kontext models.",
		"mimeType":    "text/plain",
	},
}

var expertTexts = map[string]string{
	"bfl://experts/prompt-crafting": `Flux prompt crafting guide.

Structure prompts as: subject, then setting, then style, then technical
details. Flux models respond well to plain descriptive sentences rather than
keyword soup. Name the medium explicitly (photograph, oil painting, 3D
render). Put the most important element first. Describe lighting and mood in
concrete terms ("soft window light from the left", "overcast afternoon").
Dimensions must be multiples of 32; pick them to match the intended
composition rather than cropping afterwards.`,

	"bfl://experts/photorealism": `Photorealism with Flux.

Use camera vocabulary: focal length (35mm, 85mm), aperture (f/1.8 for shallow
depth of field), film stock (Portra 400, Ektachrome). Mention the light
source and its direction. Avoid style words associated with illustration
("highly detailed", "trending") and instead describe what a photographer
would see. A lower guidance value preserves natural texture; raise steps
before raising guidance when the result looks plasticky.`,

	"bfl://experts/kontext-editing": `Editing with Kontext models.

Kontext takes an input image plus an instruction. Phrase the instruction as
the change alone, not a full scene description: "make the jacket red",
"replace the background with a rainy street at night". Preserve wording for
elements that must stay ("keep the face unchanged"). One edit per invocation
works better than compound instructions; chain invocations for multi-step
edits.`,
}

func (h *Handler) handleListResources(request mcp.JSONRPCRequest) mcp.JSONRPCResponse {
	return mcp.JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      request.ID,
		Result:  map[string]interface{}{"resources": expertResources},
	}
}

func (h *Handler) handleReadResource(request mcp.JSONRPCRequest) mcp.JSONRPCResponse {
	uri := request.Params.URI
	text, ok := expertTexts[uri]
	if !ok {
		return mcp.NewErrorResponse(request.ID, -32002, "Resource not found", uri)
	}
	return mcp.JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      request.ID,
		Result: map[string]interface{}{
			"contents": []map[string]interface{}{
				{
					"uri":      uri,
					"mimeType": "text/plain",
					"text":     text,
				},
			},
		},
	}
}
