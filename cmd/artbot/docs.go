package main

// General API documentation for swaggo. Run `swag init -g cmd/artbot/docs.go` to regenerate docs/.
//
// @title           artbot API
// @version         1.0
// @description     Operations API for the Slack art bot.
//
// @contact.name   artbot maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
