package handler

import (
	"encoding/json"

	"homedisclose/internal/disclosure/models"
	dErrors "homedisclose/pkg/domain-errors"
)

// SaveSectionRequest carries one section payload. The data key is required;
// an explicit JSON null clears the section.
type SaveSectionRequest struct {
	Data json.RawMessage `json:"data"`
}

func (r SaveSectionRequest) Value() (models.SectionValue, error) {
	var v models.SectionValue
	if len(r.Data) == 0 {
		return v, dErrors.New(dErrors.CodeBadRequest, "data is required, send null to clear the section")
	}
	if err := json.Unmarshal(r.Data, &v); err != nil {
		return v, dErrors.New(dErrors.CodeBadRequest, "invalid section payload")
	}
	return v, nil
}

type SignRequest struct {
	SignatureData string `json:"signature_data"`
	PrintedName   string `json:"printed_name"`
}

func (r SignRequest) Input() models.SignatureInput {
	return models.SignatureInput{Data: r.SignatureData, PrintedName: r.PrintedName}
}

type AttachmentRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

func (r AttachmentRequest) Input() models.AttachmentInput {
	return models.AttachmentInput{Name: r.Name, URL: r.URL, Size: r.Size, Type: r.Type}
}
