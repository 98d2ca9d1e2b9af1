// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package sqsslog provides slog attributes for SQS message metadata.
package sqsslog

import "log/slog"

// MessageId
func MessageId(s string) slog.Attr {
	return slog.String("sqs_message_id", s)
}

// MessageIds
func MessageIds(ids []string) slog.Attr {
	return slog.Any("sqs_message_ids", ids)
}

// ReceiptHandle
func ReceiptHandle(s string) slog.Attr {
	return slog.String("sqs_receipt_handle", s)
}

// MessageAttributes
func MessageAttributes(m map[string]string) slog.Attr {
	attrs := make([]any, 0, len(m))
	for key, val := range m {
		attrs = append(attrs, slog.String(key, val))
	}
	return slog.Group("sqs_message_attributes", attrs...)
}
