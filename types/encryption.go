package types

type EncryptInput struct {
	SenderID   string `json:"sender_id" binding:"required"`
	ReceiverID string `json:"receiver_id" binding:"required"`
	Message    string `json:"message" binding:"required"`
}

type EncryptOutput struct {
	EncryptedMessage string `json:"encrypted_message"`
}

type DecryptInput struct {
	SenderID         string `json:"sender_id" binding:"required"`
	ReceiverID       string `json:"receiver_id" binding:"required"`
	EncryptedMessage string `json:"encrypted_message" binding:"required"`
}

type DecryptOutput struct {
	DecryptedMessage string `json:"decrypted_message"`
}
