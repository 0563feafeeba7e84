package api

import (
	"errors"
	"net/http"

	"github.com/digitalbox/go-digitalbox-server/services"
	"github.com/digitalbox/go-digitalbox-server/types"
	"github.com/gin-gonic/gin"
)

type EncryptionApi struct {
	encryptionService *services.EncryptionService
}

func NewEncryptionApi(encryptionService *services.EncryptionService) *EncryptionApi {
	return &EncryptionApi{encryptionService: encryptionService}
}

// Encrypt
// @Summary Encrypt a message for a sender/receiver pair
// @Description Wraps the message under the sender key and then the receiver key. Both keys rotate after use.
// @Tags Encryption
// @Param message body types.EncryptInput true "message to encrypt"
// @Success 200 {object} types.EncryptOutput
// @Failure 400 {object} api.ApiError "bad request"
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Accept json
// @Produce json
// @Router /api/v1/encrypt [post]
func (ea *EncryptionApi) Encrypt(c *gin.Context) {
	var input types.EncryptInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid encrypt request: %s", err.Error())
		return
	}

	payload, wErr := ea.encryptionService.Wrap(input.SenderID, input.ReceiverID, input.Message)
	if wErr != nil {
		ApiErrorf(c, http.StatusInternalServerError, "failed to encrypt message")
		return
	}
	c.JSON(http.StatusOK, types.EncryptOutput{EncryptedMessage: payload})
}

// Decrypt
// @Summary Decrypt a wrapped message
// @Description Unwraps with the current receiver and sender keys. Since keys rotate on every
// @Description encryption, only payloads produced before the latest rotation remain readable.
// @Tags Encryption
// @Param message body types.DecryptInput true "payload to decrypt"
// @Success 200 {object} types.DecryptOutput
// @Failure 400 {object} api.ApiError "payload not decryptable with current keys"
// @Failure 404 {object} api.ApiError "no keys for identity"
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Accept json
// @Produce json
// @Router /api/v1/decrypt [put]
func (ea *EncryptionApi) Decrypt(c *gin.Context) {
	var input types.DecryptInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid decrypt request: %s", err.Error())
		return
	}

	plaintext, uErr := ea.encryptionService.Unwrap(input.SenderID, input.ReceiverID, input.EncryptedMessage)
	if uErr != nil {
		if errors.Is(uErr, types.ErrNotFound) {
			ApiErrorf(c, http.StatusNotFound, "no keys for identity")
			return
		}
		ApiErrorf(c, http.StatusBadRequest, "payload not decryptable with current keys")
		return
	}
	c.JSON(http.StatusOK, types.DecryptOutput{DecryptedMessage: plaintext})
}
