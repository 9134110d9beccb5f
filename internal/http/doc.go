// Package http provides HTTP handlers and middleware for the alarm clock API.
//
// The router exposes the following endpoints:
//   - GET /alarms, POST /alarms, GET /alarms/{id}, PUT /alarms/{id},
//     DELETE /alarms/{id}: alarm management endpoints exchanging the
//     `alarmDTO` payload defined in alarm_handler.go. Creation requires a
//     dismissal password alongside the alarm fields.
//   - POST /alarms/{id}/enabled: toggles an alarm. Disabling requires the
//     alarm's password in the request body; enabling does not.
//   - POST /alarms/{id}/password: rotates an alarm's dismissal password after
//     verifying the current one.
//   - GET /ring: reports the current ring session, if any.
//   - POST /ring/dismiss: attempts to silence the ringing alarm with the
//     supplied password. A repeating alarm is re-armed on success.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
