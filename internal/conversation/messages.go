// messages.go - User-facing texts and the error catalog

package conversation

import "github.com/troncalnet/receipt_bot_whatsapp/internal/whatsapp"

// BotError builds the user-facing text for each failure class
type BotError struct{}

func (BotError) NetworkError() string {
	return "🌐 **Error de conexión**\n\nHay problemas de conectividad. Por favor, intenta de nuevo en unos momentos."
}

func (BotError) OCRError() string {
	return "👁️ **Error de lectura**\n\nNo pude leer el texto de la imagen. Por favor:\n• Asegúrate de que la imagen esté clara\n• Verifica que tenga buena iluminación\n• Evita imágenes borrosas o muy pequeñas"
}

func (BotError) InvalidReceipt() string {
	return "📄 **Comprobante no válido**\n\nLa imagen no parece ser un comprobante de pago válido. Asegúrate de que contenga:\n• Información del banco o entidad\n• Monto de la transacción\n• Fecha del pago\n• Datos del destinatario"
}

func (BotError) WrongRecipient() string {
	return "🎯 **Destinatario incorrecto**\n\nEl comprobante no parece ser para TRONCALNET o nuestras cuentas autorizadas. Verifica que el pago sea hacia:\n• Cuentas de TRONCALNET\n• Rodriguez Quinteros\n• Números de cuenta autorizados"
}

func (BotError) DuplicateReceipt() string {
	return "🔄 **Comprobante duplicado**\n\nEste comprobante ya fue registrado anteriormente. Cada comprobante solo puede ser usado una vez.\n\nSi crees que es un error, contacta soporte con `/soporte`."
}

func (BotError) ClientNotFound(name string) string {
	return "👤 **Cliente no encontrado**\n\nNo encontré a '" + name + "' en nuestra base de datos.\n\n**Sugerencias:**\n• Verifica que el nombre esté completo\n• Intenta con la cédula/RUC\n• Usa `/soporte` si necesitas ayuda"
}

func (BotError) SystemError() string {
	return "⚠️ **Error del sistema**\n\nOcurrió un error técnico. Por favor:\n• Intenta de nuevo en unos momentos\n• Si persiste, usa `/soporte`\n• Como alternativa, escribe `/reset` para empezar de nuevo"
}

func (BotError) RateLimitExceeded() string {
	return "⏳ **Muchos mensajes**\n\nHas enviado muchos mensajes muy rápido. Por favor, espera un momento antes de continuar.\n\n💡 Tip: Puedes usar `/ayuda` para ver todos los comandos disponibles."
}

func (BotError) StorageError() string {
	return "💾 **Error de almacenamiento**\n\nHay un problema temporal con el almacenamiento de archivos. Por favor, intenta de nuevo en unos momentos."
}

// Errors is the shared catalog instance
var Errors BotError

// Button ids
const (
	BtnRegisterPayment = "opcion_1"
	BtnPlans           = "opcion_2"
	BtnReportProblem   = "opcion_3"
	BtnReportTechnical = "report_tecnico"
	BtnReportPayment   = "report_pago"
	BtnRestartYes      = "restart_yes"
	BtnRestartNo       = "restart_no"
	BtnRestartSolved   = "restart_solved"
	BtnRestartNotFixed = "restart_not_solved"
	BtnReset           = "reset"
	BtnFinish          = "finalizar"
)

const (
	msgWelcome      = "¡Hola! 👋 Soy el asistente virtual de TRONCALNET.\n\n¿Cómo puedo ayudarte hoy?"
	msgFarewell     = "¡Gracias por contactar a TRONCALNET! 😊\n\nSi necesitas algo más, aquí estoy para ayudarte."
	msgChooseOption = "Por favor, selecciona una de las opciones disponibles presionando los botones."

	msgAskIDOrName    = "Para registrar tu pago, por favor, envía los nombres y apellidos o su numero de cedula del titular del contrato."
	msgPlansSelected  = "¡Perfecto! 📋\n\nEn un momento, uno de nuestros asesores se pondrá en contacto contigo."
	msgPlansDetected  = "¡Perfecto! 📋 Veo que necesitas información sobre nuestros planes.\n\nEn un momento, uno de nuestros asesores se pondrá en contacto contigo para darte la mejor oferta."
	msgAskProblemType = "Entendido. Para dirigirte al área correcta, por favor, selecciona el tipo de problema que deseas reportar:"
	msgIntentDetected = "¡Entendido! 🛠️ Detecté que podrías tener %s\n\nPara ayudarte mejor, necesito verificar al titular. Por favor, escríbeme los *nombres y apellidos* o la *cédula/RUC* del titular del contrato."

	msgPaymentReportAskName = "Perfecto. Para continuar con tu reporte, por favor, escríbeme los *nombres y apellidos* o la *cédula/RUC* del titular del contrato."
	msgRouterRestartAsk     = "Entendido. Antes de crear un reporte, un paso simple suele solucionar muchos problemas de internet o TV.\n\n¿Ya intentaste apagar y encender tu router/decodificador durante 30 segundos?"
	msgChooseOneOfTwo       = "Por favor, selecciona una de las dos opciones usando los botones."
	msgRestartTriedAskName  = "De acuerdo. Para continuar y crear tu ticket de soporte, por favor, escríbeme los *nombres y apellidos* o la *cédula/RUC* del titular del contrato."
	msgRestartInstructions  = "Ok. Por favor, desconecta el equipo (router o decodificador) de la corriente, espera 30 segundos y vuelve a conectarlo. Luego, espera unos 5 minutos a que se estabilicen las luces.\n\n¿Hacer esto solucionó el problema?"
	msgUseButtons           = "Por favor, selecciona una de las opciones con los botones."
	msgRestartSolved        = "¡Excelente! Me alegra que se haya solucionado. Si necesitas algo más, no dudes en escribir 'hola' para volver al menú principal."
	msgRestartNotSolved     = "Lamento escuchar eso. Vamos a crear tu ticket de soporte. Por favor, escríbeme los *nombres y apellidos* o la *cédula/RUC* del titular del contrato."
	msgRestartUseButtons    = "Por favor, responde usando los botones para saber si el problema se solucionó."

	msgAskSupportName   = "Por favor, escribe los nombres y apellidos o la cédula del titular del contrato."
	msgHolderVerified   = "✅ **Titular verificado:** %s\n\nAhora, por favor, compárteme un *número de teléfono de contacto*."
	msgHolderSelected   = "✅ **Titular seleccionado:** %s\n\nAhora, por favor, compárteme un *número de teléfono de contacto*."
	msgClientSelected   = "✅ Cliente seleccionado: *%s*\n\nAhora, por favor, envía la imagen o el PDF del comprobante."
	msgClientFound      = "✅ Cliente encontrado: *%s*\n\nAhora, por favor, envía la imagen o el PDF del comprobante."
	msgManyMatches      = "Encontré varios clientes con ese nombre. ¿A cuál te refieres?"
	msgInvalidSelection = "Selección inválida. Por favor, elige una opción."
	msgSelectionError   = "Error en la selección. Por favor, usa los botones."
	msgSelectClient     = "Por favor, selecciona uno de los clientes usando los botones."

	msgPhonePaymentIssue   = "✅ **Teléfono:** %s\n\nEntendido. Ahora, por favor, describe detalladamente el *inconveniente con tu pago*.\n\n📝 Por ejemplo: 'Pagué el día X pero aún no se refleja', 'Tengo un cobro doble', o 'No estoy seguro de cuánto debo pagar'."
	msgPhoneTechnicalIssue = "✅ **Teléfono:** %s\n\nAhora, por favor, describe detalladamente el *problema que estás experimentando*.\n\n📝 Incluye toda la información que consideres relevante (presenta luz roja, cables rotos, no aparece el nombre de la red)."
	msgInvalidPhone        = "❌ Número no válido.\n\nPor favor, ingresa un número de celular de 10 dígitos (ej: 0987654321) o escribe \"este número\"."
	msgAskPhone            = "Por favor, escribe tu número de contacto o la frase \"este número\"."

	msgDescriptionTooShort = "📝 Por favor, describe el problema con más detalle usando solo texto. Tu descripción es muy corta o parece ser un número."
	msgTicketAlreadySent   = "✅ Tu reporte ya fue registrado anteriormente. Nuestro equipo se pondrá en contacto contigo pronto.\n\n¿Necesitas reportar algo diferente? Escribe 'menú' para volver al inicio."
	msgTicketRegistered    = "✅ **¡Reporte registrado exitosamente!**\n\n👤 **Titular:** %s\n🆔 **C.I./RUC:** %s\n📱 **Contacto:** %s\n\n🚀 Nuestro equipo técnico revisará tu caso y se pondrá en contacto contigo lo antes posible."
	msgAnythingElse        = "¿Puedo ayudarte en algo más?"
	msgAskDescription      = "Por favor, describe el problema que estás experimentando."

	msgAskIDOrNameAsText = "Por favor, envía el nombre o la cédula como texto."
	msgAwaitingReceipt   = "📷 **Esperando comprobante**\n\nPor favor, envía una imagen o un archivo PDF del comprobante."
	msgReceiptFirst      = "Recibí tu comprobante. 📄\n\nPor favor, escribe el nombre completo o la cédula del titular para registrarlo."

	msgAudioReceived = "🎙️ Recibí tu audio, lo estoy procesando..."
	msgAudioFailed   = "No pude entender el audio. Por favor, intenta de nuevo o escribe tu consulta. (Error: %s)"

	msgProcessingReceipt = "📄 Procesando comprobante, por favor espera..."
	msgNoImageURL        = "❌ No se pudo obtener la imagen desde WhatsApp."
	msgNoDocumentURL     = "❌ No se pudo obtener el documento desde WhatsApp."
	msgRetrySuggestion   = "\n\n🔄 **Sugerencia:** Intenta enviar la imagen nuevamente."
	msgEmptyPDF          = "📄 El PDF está vacío o corrupto. Por favor, envía un archivo válido."
	msgBadPDF            = "❌ No pude procesar el archivo PDF. Asegúrate de que no esté protegido o dañado e intenta de nuevo."
	msgDirectCollection  = "✅ **¡Gracias por tu pago!**\n\nHemos detectado que realizaste un pago directo a través de nuestros puntos de recaudación autorizados (Bancos, Tiendas, etc.).\n\nEste tipo de pago **se registra automáticamente** en nuestro sistema y no necesita validación adicional por este medio.\n\nSi tienes alguna duda, escribe /soporte."
	msgNoTextDetected    = "📝 **No se detectó texto**\n\nNo pude leer texto en la imagen. Por favor:\n• Asegúrate de que la imagen sea clara\n• Verifica que el comprobante tenga texto visible\n• Intenta con mejor iluminación"
	msgPaymentRegistered = "🎉 **¡Pago registrado exitosamente!**\n\n👤 **Cliente:** %s\n🆔 **C.I./RUC:** %s\n💰 **Monto:** $%s\n🏦 **Banco:** %s\n📅 **Fecha:** %s\n\n✅ Nuestro equipo verificará tu pago en las próximas horas.\n📧 Te notificaremos cuando esté confirmado."
	msgNeedAnythingElse  = "¿Necesitas algo más?"

	msgInvalidFileSelection = "Selección inválida. Por favor, elige una de las opciones."
)

// Quick command texts
const (
	msgCancelled       = "🔄 Proceso cancelado. Escribe 'hola' para empezar de nuevo."
	msgHelp            = "🤖 **Comandos disponibles**\n\n• `/cancelar` - Cancela el proceso actual\n• `/reset` - Reinicia la conversación\n• `/estado` - Muestra en qué paso estás\n• `/soporte` - Habla con un agente humano\n• `/deuda <cédula o nombre>` - Consulta la deuda de un cliente\n• `/ayuda` - Muestra este mensaje\n\nTambién puedes escribir 'hola' o 'menú' en cualquier momento para volver al inicio."
	msgNoActiveProcess = "📊 No tienes ningún proceso activo. Escribe 'hola' para comenzar."
	msgStatus          = "📊 **Estado actual:** %s"
	msgHumanTakeover   = "👨‍💻 Transfiriendo a soporte humano. En un momento, uno de nuestros agentes se pondrá en contacto contigo.\n\n*Para volver al bot automático, escribe `/reset`.*"
	msgCleanupDone     = "🧹 Limpieza de archivos temporales completada."
	msgCleanupFailed   = "⚠️ No se pudo completar la limpieza de archivos temporales."
	msgUnknownCommand  = "🤔 No reconozco el comando `%s`. ¿Quisiste decir `%s`?"

	msgDebtUnavailable = "⚠️ No se pudo cargar la base de deudas. Verifica el archivo."
	msgDebtAskQuery    = "⚠️ Ingresa una cédula o nombre."
	msgDebtNotFound    = "❌ No se encontró deuda para ese cliente."
	msgDebtSummary     = "👤 Cliente: %s\n🆔 Cédula: %s\n💰 Deuda total: $%s"
)

// stepDescriptions feed /estado
var stepDescriptions = map[Step]string{
	StepAwaitingInitialAction:        "Esperando que elijas una opción del menú",
	StepAwaitingIDOrName:             "Esperando nombre o cédula para registrar un pago",
	StepAwaitingClarification:        "Esperando que selecciones al cliente correcto",
	StepAwaitingReceipt:              "Esperando imagen o PDF del comprobante",
	StepAwaitingProblemType:          "Esperando el tipo de problema a reportar",
	StepAwaitingRouterRestartConfirm: "Esperando confirmación de reinicio del equipo",
	StepAwaitingRestartResult:        "Esperando el resultado del reinicio del equipo",
	StepAwaitingSupportName:          "Esperando nombre o cédula del titular para el reporte",
	StepAwaitingSupportClarification: "Esperando que selecciones al titular correcto",
	StepAwaitingSupportPhone:         "Esperando un número de contacto",
	StepAwaitingSupportDescription:   "Esperando la descripción del problema",
	StepHumanTakeover:                "Atendido por un agente de soporte",
	StepAwaitingIDForFile:            "Esperando nombre o cédula para el comprobante recibido",
	StepAwaitingClarificationForFile: "Esperando que selecciones al cliente del comprobante",
}

var (
	menuButtons = []whatsapp.Button{
		{ID: BtnRegisterPayment, Title: "Registrar un pago"},
		{ID: BtnPlans, Title: "Consultar planes"},
		{ID: BtnReportProblem, Title: "Reportar un problema"},
	}
	problemTypeButtons = []whatsapp.Button{
		{ID: BtnReportTechnical, Title: "Internet o TVCable"},
		{ID: BtnReportPayment, Title: "Problemas con Pagos"},
	}
	restartConfirmButtons = []whatsapp.Button{
		{ID: BtnRestartYes, Title: "Sí, ya lo intenté"},
		{ID: BtnRestartNo, Title: "No, déjame intentar"},
	}
	restartResultButtons = []whatsapp.Button{
		{ID: BtnRestartSolved, Title: "Sí, se solucionó"},
		{ID: BtnRestartNotFixed, Title: "No, sigue igual"},
	}
	afterTicketButtons = []whatsapp.Button{
		{ID: BtnRegisterPayment, Title: "Registrar un pago"},
		{ID: BtnPlans, Title: "Consultar planes"},
		{ID: BtnFinish, Title: "No, gracias"},
	}
	afterReceiptButtons = []whatsapp.Button{
		{ID: BtnRegisterPayment, Title: "Registrar otro pago"},
		{ID: BtnPlans, Title: "Ver planes"},
		{ID: BtnReportProblem, Title: "Soporte técnico"},
	}
	backToMenuButtons = []whatsapp.Button{{ID: BtnReset, Title: "⬅️ Volver al menú"}}
	mainMenuButtons   = []whatsapp.Button{{ID: BtnReset, Title: "Menú principal"}}
)
