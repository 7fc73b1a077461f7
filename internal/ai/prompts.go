// prompts.go - Prompt used for plain text OCR

package ai

// ocrPrompt asks the model for a verbatim transcription of a payment receipt
const ocrPrompt = `Extract ALL visible text from this payment receipt or bank transfer screenshot.
Read everything from top to bottom, left to right.
Keep numbers, dates, amounts, account numbers and reference codes exactly as printed.
Keep the original language (Spanish). Do not translate, summarize or explain.
Return ONLY the extracted text, nothing else. If there is no text, return an empty response.`
