package main

//go:generate swag init -g cmd/server/main.go -o docs

// @title           Copydesk API
// @version         0.1.0
// @description     Copy-trading dashboard backend and token discovery aggregator.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
