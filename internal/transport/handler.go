package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/anime-shed/fingerprint-quality-go/internal/config"
	apperrors "github.com/anime-shed/fingerprint-quality-go/internal/errors"
	"github.com/anime-shed/fingerprint-quality-go/internal/logger"
	"github.com/anime-shed/fingerprint-quality-go/internal/service"
	"github.com/anime-shed/fingerprint-quality-go/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func NewHandler(svc service.ScoringService, cfg *config.Config) http.Handler {
	r := gin.New()

	r.Use(
		gin.Recovery(),
		requestLogger(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)
	r.POST("/score", scoreImage(svc, cfg))
	r.GET("/measures", listMeasures(svc))
	r.POST("/quality-block", qualityBlock(svc))
	r.GET("/model", modelInfo(svc))
	r.GET("/metrics", metrics(svc))
	r.GET("/records/:id", record(svc))

	return r
}

func scoreImage(svc service.ScoringService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.AnalysisTimeout)
		defer cancel()

		var req models.ScoreRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}
		// Query parameter takes precedence over the JSON body
		if mode := c.Query("mode"); mode != "" {
			req.Mode = mode
		}

		logger.WithFields(logrus.Fields{
			"url":    req.URL,
			"inline": req.Image != "",
			"mode":   req.Mode,
		}).Debug("Scoring image")

		resp, err := svc.Score(ctx, &req)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && !apperrors.IsType(err, apperrors.ErrorTypeTimeout) {
				err = apperrors.NewTimeoutError("scoring timed out", err)
			}
			respondError(c, determineStatusCode(err), "failed to score image", err)
			return
		}

		fields := logrus.Fields{
			"url":                 req.URL,
			"mode":                resp.Mode,
			"processing_time_sec": resp.ProcessingTimeSec,
		}
		if resp.Score != nil {
			fields["score"] = *resp.Score
		}
		logger.WithFields(fields).Info("Image scored successfully")

		c.JSON(http.StatusOK, resp)
	}
}

func listMeasures(svc service.ScoringService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"measures": svc.Measures()})
	}
}

func qualityBlock(svc service.ScoringService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.QualityBlockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}
		resp, err := svc.QualityBlock(req.Identifier, *req.Value)
		if err != nil {
			respondError(c, determineStatusCode(err), "failed to map measure", err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func modelInfo(svc service.ScoringService) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := svc.ModelInfo()
		if err != nil {
			respondError(c, determineStatusCode(err), "model unavailable", err)
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

func metrics(svc service.ScoringService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Metrics())
	}
}

func record(svc service.ScoringService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			respondError(c, http.StatusBadRequest, "invalid record id",
				apperrors.NewValidationError("record id must be a positive integer", err))
			return
		}
		rec, err := svc.Record(c.Request.Context(), id)
		if err != nil {
			respondError(c, determineStatusCode(err), "failed to read record", err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
		}).Debug("Request handled")
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last().Err
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	resp := models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		resp.Details = appErr.Details
		resp.Module = appErr.Module
	}
	c.AbortWithStatusJSON(code, resp)
}
