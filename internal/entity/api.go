package entity

// ReadingsRequest is the body of a readings batch. Fields stay untyped until
// validation so that shape errors can be reported per field.
type ReadingsRequest struct {
	ID       any            `json:"id" validate:"required,device_uid"`
	Readings []ReadingInput `json:"readings" validate:"required,dive"`
}

type ReadingInput struct {
	Timestamp any `json:"timestamp" validate:"present,instant"`
	Count     any `json:"count" validate:"required,whole,nonneg"`
}

// Sample is a validated reading ready for ingestion.
type Sample struct {
	At    Instant
	Count int64
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type TotalCountResponse struct {
	TotalCount int64 `json:"total_count"`
}

type LatestTimestampResponse struct {
	LatestTimestamp *string `json:"latest_timestamp"`
}

type PingResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
