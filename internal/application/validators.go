package application

import "github.com/go-playground/validator/v10"

// validate checks configuration handed directly to constructors, outside
// of the ConfigLoader.
var validate = validator.New()
