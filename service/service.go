package service

import (
	"cheatdetect/config"
	"cheatdetect/pkg/logger"
	"cheatdetect/storage"
)

type IServiceManager interface {
	Detection() DetectionService
}

type service struct {
	detectionService DetectionService
}

func New(stg storage.IStorage, blob storage.IBlobStorage, cfg config.Config, log logger.ILogger) IServiceManager {
	return &service{
		detectionService: NewDetectionService(stg, blob, cfg, log),
	}
}

func (s *service) Detection() DetectionService {
	return s.detectionService
}
