// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package userform runs the user form service.
//
// A submitted form is turned into a candidate user record by the intake
// package, validated by the gateway package and the outcome is reported
// back to the caller. The same flow is reachable over HTTP, from queue
// consumers (SQS, Pub/Sub and Kafka) and from the command line.
//
// This package holds the small application framework everything else
// plugs into: an [App] is built from config by an [AppBuilder] and then
// ran by [Run].
//
//	err := userform.Run(
//		ctx,
//		appbuilder.Recover(appbuilder.OTel(builder)),
//		config.FromYaml(bytes.NewReader(configBytes)),
//	)
package userform
