package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/angelmondragon/salesdesk-backend/pkg/errors"
	"github.com/angelmondragon/salesdesk-backend/pkg/logger"
	"github.com/angelmondragon/salesdesk-backend/pkg/types"
)

const encodeFailureBody = `{"error":"Internal Server Error","code":"INTERNAL_ERROR"}` + "\n"

// WritePage renders the `{data, meta}` list shape.
func WritePage(w http.ResponseWriter, data, meta any) {
	writeJSON(w, http.StatusOK, types.PageEnvelope{Data: data, Meta: meta})
}

// WriteJSON renders payload as-is, without an envelope.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, payload)
}

// WriteError renders err as the flat `{error, code, details}` body. Untyped
// errors are classified first; only codes that allow it expose their message
// and details, everything else gets the public text for its code.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	typed := pkgerrors.Classify(err)
	meta := pkgerrors.MetadataFor(typed.Code())

	payload := types.ErrorEnvelope{Error: meta.PublicMessage, Code: string(typed.Code())}
	if meta.MessageAllowed && typed.Message() != "" {
		payload.Error = typed.Message()
	}
	if meta.DetailsAllowed {
		payload.Details = typed.Details()
	}

	if logg != nil {
		logError(ctx, logg, err, typed, meta)
	}
	writeJSON(w, meta.HTTPStatus, payload)
}

func logError(ctx context.Context, logg *logger.Logger, err error, typed *pkgerrors.Error, meta pkgerrors.Metadata) {
	dump := pkgerrors.Dump(err)
	fields := map[string]any{
		"error":       dump.TopMessage,
		"error_code":  typed.Code(),
		"error_chain": dump.Chain,
		"http_status": meta.HTTPStatus,
		"retryable":   meta.Retryable,
	}
	if dump.Driver != "" {
		fields["db_driver"] = dump.Driver
		fields["db_state"] = dump.SQLState
		fields["db_table"] = dump.Table
		fields["db_detail"] = dump.Detail
		fields["db_transient"] = dump.Transient
	}
	ctx = logg.WithFields(ctx, fields)
	if meta.HTTPStatus >= http.StatusInternalServerError && typed.Code() != pkgerrors.CodeTimeout {
		logg.Error(ctx, "request.error", err)
		return
	}
	logg.Warn(ctx, "request.rejected")
}

// writeJSON encodes before touching the response so an unencodable payload
// still yields a well-formed 500.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(encodeFailureBody))
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
