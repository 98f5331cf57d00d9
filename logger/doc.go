// Package logger wraps zerolog for voxnote.
//
// Output is either console lines tagged with the service and level
// ("[VOX][INF] ...") or one JSON object per line. Components derive tagged
// loggers with WithComponent; WithContext adds the trace, span and request
// IDs of a request.
//
//	logging:
//	  level: debug
//	  format: json
//
//	log := base.WithComponent("pipeline")
//	log.Info("transcription complete", logger.Fields(logger.FieldFile, name))
package logger
