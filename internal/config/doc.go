// Package config provides configuration parsing for toastd.
//
// Configuration is read from a JSON (.json) or YAML (.yaml, .yml) file.
// Missing fields keep their defaults; durations accept Go duration strings
// ("1.5s") or integer milliseconds.
//
// # Configuration File Structure
//
//	server:
//	  addr: ":8080"
//	  shutdownTimeout: 10s
//	toast:
//	  duration: 3s
//	  debounceTime: 1s
//	  rateLimit: 20
//	  burst: 40
//	log:
//	  level: info
//	  format: text
//	metrics:
//	  enabled: true
//	  namespace: toast
//	tracing:
//	  enabled: false
//	demo:
//	  enabled: true
//	  interval: 2s
//	announcements:
//	  - schedule: "0 9 * * MON-FRI"
//	    type: info
//	    title: Standup
//	    message: Standup starts in 5 minutes
//
// The TOASTD_ADDR and TOASTD_LOG_LEVEL environment variables override the
// file.
//
// Watch reloads the file when it changes so registry defaults can be
// adjusted without a restart.
package config
