package server

import "github.com/TarasTrach/NexusBot/storage/types"

type OrdersResponse struct {
	Results []*types.Order `json:"results"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
