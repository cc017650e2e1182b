package handlers

import (
	"errors"
	"net/http"
	"time"

	"tripmeet/config"
	vendorRepo "tripmeet/database/repository/vendor"
	"tripmeet/models"
	"tripmeet/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// PaymentHandler exposes the payment recipient lookup used by the
// checkout UI to show where the demo transfer goes.
type PaymentHandler struct {
	Vendors vendorRepo.VendorRepository
	Logger  *zap.Logger
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(vendors vendorRepo.VendorRepository, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Vendors: vendors, Logger: logger}
}

// GetVendor returns the active payment recipient. Falls back to the
// configured wallet address when the registry is empty.
func (h *PaymentHandler) GetVendor(c *gin.Context) {
	vendor, err := h.Vendors.GetDefault(c.Request.Context())
	if err != nil {
		if !errors.Is(err, vendorRepo.ErrNoVendor) {
			h.Logger.Error("vendor lookup failed", zap.Error(err))
		}
		if addr := config.AppConfig.VendorWalletAddress; addr != "" {
			c.JSON(http.StatusOK, gin.H{
				"vendor": models.Vendor{
					Name:          "Demo Vendor",
					WalletAddress: addr,
					CreatedAt:     time.Now(),
				},
				"amount":   utils.DemoPaymentAmount,
				"currency": utils.DemoPaymentCurrency,
			})
			return
		}
		utils.JSONError(c, http.StatusNotFound, "no payment recipient configured", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vendor":   vendor,
		"amount":   utils.DemoPaymentAmount,
		"currency": utils.DemoPaymentCurrency,
	})
}

// VendorRequest registers a payment recipient.
type VendorRequest struct {
	Name          string `json:"name" binding:"required"`
	WalletAddress string `json:"walletAddress" binding:"required"`
}

// RegisterVendor adds a recipient to the registry. The most recently
// registered vendor becomes the default checkout recipient.
func (h *PaymentHandler) RegisterVendor(c *gin.Context) {
	var req VendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	id, err := h.Vendors.Create(c.Request.Context(), models.Vendor{
		Name:          req.Name,
		WalletAddress: req.WalletAddress,
	})
	if err != nil {
		h.Logger.Error("vendor registration failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to register vendor", err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// GetVendorByID returns one registered vendor.
func (h *PaymentHandler) GetVendorByID(c *gin.Context) {
	vendor, err := h.Vendors.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "vendor not found"})
			return
		}
		h.Logger.Error("vendor lookup failed", zap.String("id", c.Param("id")), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to load vendor", err.Error())
		return
	}
	c.JSON(http.StatusOK, vendor)
}
