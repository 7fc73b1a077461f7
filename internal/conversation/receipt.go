// receipt.go - Receipt pipeline: download, validate, read, classify, record

package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/ai"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/extractor"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/processor"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/whatsapp"
)

// processReceipt runs the whole pipeline for mediaID on behalf of client.
// User-facing failures are answered here and leave the step unchanged; only
// state persistence errors are returned.
func (b *Bot) processReceipt(ctx context.Context, t *turn, mediaID string, isPDF bool, client Payload) error {
	rc := t.rc
	b.reply(ctx, rc, t.user, msgProcessingReceipt)

	// Step 1: Download
	rc.StartStep("download_media")
	data, mimeType, err := b.Messenger.DownloadMedia(ctx, mediaID)
	if err != nil {
		rc.EndStep("failed", err)
		b.reply(ctx, rc, t.user, downloadFailureText(err, isPDF))
		return nil
	}
	rc.EndStep("success", nil)

	ext := "jpg"
	if isPDF {
		ext = "pdf"
	}
	if path, err := processor.SaveTempFile(b.opts.UploadDir, processor.TempFileName(t.user, mediaID, ext, b.now()), data); err != nil {
		rc.Logger().Warn("failed to keep temp copy", zap.Error(err))
	} else {
		defer processor.RemoveTempFile(path)
	}

	// Step 2: PDF first page
	imageData := data
	if isPDF {
		mimeType = "application/pdf"
		rc.StartStep("render_pdf")
		imageData, err = processor.RenderPDFFirstPage(data)
		if err != nil {
			rc.EndStep("failed", err)
			if errors.Is(err, processor.ErrEmptyPDF) {
				b.reply(ctx, rc, t.user, msgEmptyPDF)
			} else {
				b.reply(ctx, rc, t.user, msgBadPDF)
			}
			return nil
		}
		rc.EndStep("success", nil)
	}

	// Step 3: Quality
	img, qualityMsg, ok := processor.ValidateImageQuality(imageData)
	if !ok {
		rc.LogWarning("image rejected: %s", qualityMsg)
		b.reply(ctx, rc, t.user, qualityMsg+msgRetrySuggestion)
		return nil
	}

	hash, err := processor.PerceptualHash(img)
	if err != nil {
		return fmt.Errorf("failed to hash receipt: %w", err)
	}

	// Step 4: Archive
	imageRef := processor.ImageReference(t.user, hash)
	if b.Archive != nil {
		rc.StartStep("archive_receipt")
		if ref, err := b.Archive.Store(ctx, t.user, data, mimeType); err != nil {
			rc.EndStep("failed", err)
		} else {
			imageRef = ref
			rc.EndStep("success", nil)
		}
	}

	// Step 5: OCR
	rc.StartStep("ocr")
	ocrInput, ocrMime, err := processor.PreprocessForOCR(img, b.opts.MaxImageDimension)
	if err != nil {
		rc.Logger().Warn("preprocessing failed, sending original", zap.Error(err))
		ocrInput, ocrMime = imageData, "image/png"
		if !isPDF && mimeType != "" {
			ocrMime = mimeType
		}
	}
	text, err := b.OCR.RecognizeText(ctx, ocrInput, ocrMime)
	if err != nil && !errors.Is(err, ai.ErrNoText) {
		rc.EndStep("failed", err)
		if whatsapp.IsTimeout(err) {
			b.reply(ctx, rc, t.user, Errors.NetworkError())
		} else {
			b.reply(ctx, rc, t.user, Errors.OCRError())
		}
		return nil
	}
	rc.EndStep("success", nil)
	rc.Logger().Debug("ocr text", zap.String("provider", b.OCR.GetProviderName()), zap.Int("chars", len(text)))

	// Step 6: Classification
	if b.Classifier.IsDirectCollection(text) {
		rc.LogInfo("direct collection receipt, nothing to record")
		if err := b.transition(ctx, t, State{}); err != nil {
			return err
		}
		b.replyButtons(ctx, rc, t.user, msgDirectCollection, mainMenuButtons)
		return nil
	}
	if strings.TrimSpace(text) == "" {
		b.reply(ctx, rc, t.user, msgNoTextDetected)
		return nil
	}
	if !b.Classifier.IsValidReceipt(text) {
		b.reply(ctx, rc, t.user, Errors.InvalidReceipt())
		return nil
	}
	if !b.Classifier.RecipientOK(text) {
		b.reply(ctx, rc, t.user, Errors.WrongRecipient())
		return nil
	}

	// Step 7: Duplicate pre-check
	if _, dup := b.Ledger.ExistingHashes(ctx)[hash]; dup {
		rc.LogWarning("duplicate receipt hash %s", hash)
		b.reply(ctx, rc, t.user, Errors.DuplicateReceipt())
		return nil
	}

	// Step 8: Extraction and ledger
	result := b.Extractor.Extract(text, hash, b.now())
	confidence := extractor.Assess(result)
	amount := result.AmountString()
	rc.Logger().Info("receipt extracted",
		zap.String("amount", amount),
		zap.String("date", result.Date),
		zap.String("bank", result.Bank),
		zap.String("document", result.Document),
		zap.Float64("confidence", confidence.Score))

	rc.StartStep("record_payment")
	if b.Ledger.RecordPayment(ctx, client.ClientName, client.ClientID, amount, result.Date, result.Document, result.Bank, imageRef, hash) {
		rc.EndStep("success", nil)
		b.reply(ctx, rc, t.user, fmt.Sprintf(msgPaymentRegistered,
			titleCase(client.ClientName), client.ClientID, amount, result.Bank, result.Date))
		b.Notifier.NotifyPayment(ctx, PaymentNotice{
			ClientName: client.ClientName,
			ClientID:   client.ClientID,
			Amount:     amount,
			Bank:       result.Bank,
			Date:       result.Date,
			Document:   result.Document,
			Confidence: confidence,
		})
	} else {
		// step and payload stay as they are
		rc.EndStep("failed", errors.New("ledger rejected payment"))
		b.reply(ctx, rc, t.user, Errors.StorageError())
		return nil
	}

	if err := b.transition(ctx, t, State{Step: StepAwaitingInitialAction}); err != nil {
		return err
	}
	b.replyButtons(ctx, rc, t.user, msgNeedAnythingElse, afterReceiptButtons)
	return nil
}

func downloadFailureText(err error, isPDF bool) string {
	switch {
	case errors.Is(err, whatsapp.ErrNoMediaURL) && isPDF:
		return msgNoDocumentURL
	case errors.Is(err, whatsapp.ErrNoMediaURL):
		return msgNoImageURL
	default:
		return Errors.NetworkError()
	}
}
