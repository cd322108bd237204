// Package docs Ecopoint Service API.
//
// Поиск ближайшего пункта приёма вторсырья (ecoponto) по координатам
// пользователя. Используется мессенджер-ботом через HTTP и Redis Streams.
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//	- text/plain
//
// swagger:meta
package docs
