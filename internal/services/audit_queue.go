package services

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/emlakcrm/go-audit-api/internal/interfaces"
	"github.com/emlakcrm/go-audit-api/internal/models"
)

// AuditQueue middleware kaynaklı audit kayıtları için fire-and-forget
// worker pool'u. Asıl isteğin yanıtı audit yazımını beklemez; queue dolu
// olduğunda kayıt log'lanıp düşürülür (audit hatası primary isteği asla
// başarısız yapmaz).
type AuditQueue struct {
	jobChan    chan *models.CreateAuditLogRequest
	workers    int
	bufferSize int
	wg         sync.WaitGroup
	service    interfaces.SecurityServiceInterface
	logger     zerolog.Logger
}

// NewAuditQueue yeni queue oluşturur
func NewAuditQueue(workers int, service interfaces.SecurityServiceInterface, bufferSize int, logger zerolog.Logger) *AuditQueue {
	return &AuditQueue{
		jobChan:    make(chan *models.CreateAuditLogRequest, bufferSize),
		workers:    workers,
		bufferSize: bufferSize,
		service:    service,
		logger:     logger.With().Str("component", "audit_queue").Logger(),
	}
}

// Start worker'ları başlatır
func (q *AuditQueue) Start() {
	q.logger.Info().
		Int("workers", q.workers).
		Int("buffer_size", q.bufferSize).
		Msg("🔄 Audit queue başlatıldı")

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Stop queue'yu durdurur; bekleyen kayıtlar yazıldıktan sonra döner
func (q *AuditQueue) Stop() {
	close(q.jobChan)
	q.wg.Wait()
	q.logger.Info().Msg("⏹️ Audit queue durduruldu")
}

// worker kuyruktan kayıt tüketir; tek bir job'ın panic'i worker'ı
// öldürmez, loop bir sonraki job ile devam eder
func (q *AuditQueue) worker(id int) {
	defer q.wg.Done()

	for req := range q.jobChan {
		q.process(id, req)
	}
}

// process tek bir kaydı panic recovery ile yazar
func (q *AuditQueue) process(id int, req *models.CreateAuditLogRequest) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error().
				Interface("recover", r).
				Int("worker_id", id).
				Str("company_id", req.CompanyID).
				Msg("🚨 Audit worker panikledi ama toparlandı")
		}
	}()

	if _, err := q.service.Record(req); err != nil {
		// Log-and-continue: audit yazım hatası sadece log'lanır
		q.logger.Error().
			Err(err).
			Int("worker_id", id).
			Str("company_id", req.CompanyID).
			Str("action", string(req.Action)).
			Str("resource", req.Resource).
			Msg("❌ Async audit kaydı yazılamadı")
	}
}

// Enqueue kaydı queue'ya ekler; queue doluysa kaydı düşürür ve false döner
func (q *AuditQueue) Enqueue(req *models.CreateAuditLogRequest) bool {
	select {
	case q.jobChan <- req:
		return true
	default:
		q.logger.Warn().
			Str("company_id", req.CompanyID).
			Str("resource", req.Resource).
			Msg("Audit queue dolu, kayıt düşürüldü")
		return false
	}
}
