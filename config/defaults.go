package config

var DefaultConfig string = `
logging:
  console-level: 5
  file-level: -1

calendar:
  dir: ""
  default: "personal"

parse:
  mode: "lenient"
  max-depth: 16

format:
  fold-width: 75

cache:
  path: ""

caldav:
  endpoint: ""
  username: ""
  calendar: ""
  timeout-seconds: 30

sync:
  schedule: "@every 15m"
`
