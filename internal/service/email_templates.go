package service

import (
	"fmt"

	"github.com/dmcervs/donatec/internal/model"
)

// Plain-text email bodies. The frontend renders nothing from these; they
// go straight to the recipient's inbox.

func welcomeTemplate(name string) (subject, body string) {
	subject = "¡Bienvenido a Donatec!"
	body = fmt.Sprintf(`Hola %s:

Tu cuenta en Donatec quedó registrada. Ya puedes publicar donaciones y
solicitar los artículos que otros miembros de la comunidad comparten.

Saludos,
El equipo de Donatec`, name)
	return subject, body
}

func requestReceivedTemplate(ownerName, donationTitle, requesterName string) (subject, body string) {
	subject = fmt.Sprintf("Nueva solicitud para «%s»", donationTitle)
	body = fmt.Sprintf(`Hola %s:

%s ha solicitado tu donación «%s». Entra a Donatec para revisar la
justificación y aprobar o rechazar la solicitud.

Saludos,
El equipo de Donatec`, ownerName, requesterName, donationTitle)
	return subject, body
}

func requestDecisionTemplate(requesterName, donationTitle, state string) (subject, body string) {
	verdict := "rechazada"
	if state == model.RequestApproved {
		verdict = "aprobada"
	}
	subject = fmt.Sprintf("Tu solicitud de «%s» fue %s", donationTitle, verdict)
	body = fmt.Sprintf(`Hola %s:

Tu solicitud de la donación «%s» fue %s. Si fue aprobada, la persona
donante se pondrá en contacto contigo al teléfono que registraste.

Saludos,
El equipo de Donatec`, requesterName, donationTitle, verdict)
	return subject, body
}
