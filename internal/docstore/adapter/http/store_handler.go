package http

import (
	"encoding/json"

	"panchayat-docstore/internal/docstore/usecase"
	"panchayat-docstore/internal/shared/errors"
	"panchayat-docstore/internal/shared/logger"
	"panchayat-docstore/pkg/value"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// StoreHandler serves the generic document store REST family.
//
//	GET    /        list documents of ?path= (filters, sorts, limit)
//	GET    /doc     one document at ?path=
//	PUT    /        replace {path, data}
//	PATCH  /        merge {path, data}
//	POST   /        create {path, data} under a generated id
//	DELETE /        remove {path}
type StoreHandler struct {
	uc  usecase.DocumentUsecase
	log logger.Logger
}

// NewStoreHandler creates a handler over uc.
func NewStoreHandler(uc usecase.DocumentUsecase, log logger.Logger) *StoreHandler {
	return &StoreHandler{uc: uc, log: log.WithComponent("store-handler")}
}

// RegisterRoutes mounts the store routes on router. Handlers run after any
// middleware passed in.
func (h *StoreHandler) RegisterRoutes(router fiber.Router, middleware ...fiber.Handler) {
	group := router.Group("/", middleware...)

	group.Get("/", h.List)
	group.Get("/doc", h.Get)
	group.Put("/", h.Set)
	group.Patch("/", h.Update)
	group.Post("/", h.Create)
	group.Delete("/", h.Delete)
}

// writeRequest is the body of every write.
type writeRequest struct {
	Path string        `json:"path"`
	Data *value.Object `json:"data"`
}

func (h *StoreHandler) List(c *fiber.Ctx) error {
	req, err := usecase.ParseListRequest(query(c, "path"), query(c, "filters"), query(c, "sorts"), query(c, "limit"))
	if err != nil {
		return h.respondError(c, err)
	}

	docs, err := h.uc.List(c.UserContext(), req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(docs)
}

func (h *StoreHandler) Get(c *fiber.Ctx) error {
	doc, err := h.uc.Get(c.UserContext(), query(c, "path"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(doc)
}

func (h *StoreHandler) Set(c *fiber.Ctx) error {
	body, err := parseWrite(c)
	if err != nil {
		return h.respondError(c, err)
	}

	doc, err := h.uc.Set(c.UserContext(), body.Path, body.Data)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(doc)
}

func (h *StoreHandler) Update(c *fiber.Ctx) error {
	body, err := parseWrite(c)
	if err != nil {
		return h.respondError(c, err)
	}

	doc, err := h.uc.Update(c.UserContext(), body.Path, body.Data)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(doc)
}

func (h *StoreHandler) Create(c *fiber.Ctx) error {
	body, err := parseWrite(c)
	if err != nil {
		return h.respondError(c, err)
	}

	doc, err := h.uc.Create(c.UserContext(), body.Path, body.Data)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

func (h *StoreHandler) Delete(c *fiber.Ctx) error {
	body, err := parseWrite(c)
	if err != nil {
		return h.respondError(c, err)
	}

	if err := h.uc.Delete(c.UserContext(), body.Path); err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// parseWrite decodes the JSON body. A DELETE without a body may name the
// document with ?path= instead.
func parseWrite(c *fiber.Ctx) (writeRequest, error) {
	var body writeRequest
	raw := c.Body()
	if len(raw) == 0 {
		body.Path = query(c, "path")
		return body, nil
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return writeRequest{}, errors.NewValidationError("request body must be a JSON object {path, data}").
			WithCause(err)
	}
	if body.Path == "" {
		body.Path = query(c, "path")
	}
	return body, nil
}

// query copies a query value out of the request buffer, which fasthttp reuses
// once the handler returns. Paths end up as registry keys.
func query(c *fiber.Ctx, key string) string {
	return utils.CopyString(c.Query(key))
}

func (h *StoreHandler) respondError(c *fiber.Ctx, err error) error {
	status := errors.HTTPStatus(err)
	errType := errors.ErrorTypeInternal
	message := "internal server error"

	if appErr, ok := errors.AsAppError(err); ok {
		errType = appErr.Type
		message = appErr.Message
	} else if status < fiber.StatusInternalServerError {
		message = err.Error()
	}

	if status >= fiber.StatusInternalServerError {
		h.log.WithContext(c.UserContext()).Errorf("%s %s: %v", c.Method(), c.OriginalURL(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error":   errType,
		"message": message,
	})
}
