package service

import (
	"github.com/C0de-cloud/Notes-API/mq"
	"github.com/C0de-cloud/Notes-API/store"
)

type Service struct {
	Store     store.NotesStore
	MQ        mq.MessageQueue
	JWTSecret []byte
}

func NewService(store store.NotesStore, mq mq.MessageQueue, jwtSecret []byte) *Service {
	return &Service{
		Store:     store,
		MQ:        mq,
		JWTSecret: jwtSecret,
	}
}
