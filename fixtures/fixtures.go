package fixtures

import (
	_ "embed"
)

// ConfigTemplate is the annotated configuration written by `accelbench init`.
//
//go:embed config/config.yaml.template
var ConfigTemplate []byte
