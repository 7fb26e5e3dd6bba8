package importer

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"

	"github.com/yairfalse/apidrift/internal/errors"
	"github.com/yairfalse/apidrift/pkg/types"
)

// fileLayout locates the identifying fields in one accepted document shape
type fileLayout struct {
	id   string
	name string
}

// fileLayouts are tried in order: a plain descriptor, a Postman v2 export,
// and a Postman API export wrapped under "collection"
var fileLayouts = []fileLayout{
	{id: "collection_id", name: "name"},
	{id: "info._postman_id", name: "info.name"},
	{id: "collection.info._postman_id", name: "collection.info.name"},
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseCollectionFile extracts the collection id and name from a collection
// document. Anything without both fields is rejected.
func ParseCollectionFile(data []byte) (types.SaveCollectionRequest, error) {
	var req types.SaveCollectionRequest

	if !gjson.ValidBytes(data) {
		return req, invalidFile("document is not valid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return req, invalidFile("document is not a JSON object")
	}

	for _, layout := range fileLayouts {
		id := doc.Get(layout.id)
		name := doc.Get(layout.name)
		if !id.Exists() && !name.Exists() {
			continue
		}
		req = types.SaveCollectionRequest{
			CollectionID: scalar(id),
			Name:         scalar(name),
		}
		break
	}

	req.Normalize()
	if err := validate.Struct(&req); err != nil {
		return req, invalidFile(err.Error())
	}
	return req, nil
}

// scalar returns a string or number field as text
func scalar(r gjson.Result) string {
	switch r.Type {
	case gjson.String, gjson.Number:
		return r.String()
	default:
		return ""
	}
}

func invalidFile(cause string) error {
	return errors.ValidationError(errors.MessageInvalidFile).WithCause(strings.TrimSpace(cause))
}
