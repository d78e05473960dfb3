package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.BrazilianPortuguese

	message.SetString(lang, keyWelcome, "Olá %s, boas-vindas! Antes de contribuir, leia e aceite o acordo de licença de contribuidor.")
	message.SetString(lang, keyAgreeLicenseLabel, "Eu aceito")
	message.SetString(lang, keyAskAccountLogin, "Obrigado %s! Responda com seu login do GitHub para vincularmos sua conta.")
	message.SetString(lang, keyAccountMissing, "Não encontramos uma conta do GitHub chamada %s. Confira a grafia e tente novamente.")
	message.SetString(lang, keyAccountTaken, "A conta do GitHub %s já está vinculada a outra pessoa.")
	message.SetString(lang, keyLinkNotApplicable, "Vincular uma conta não é o próximo passo agora.")
	message.SetString(lang, keyTaskAssigned, "Conta %s vinculada. Sua primeira tarefa (#%d) está pronta. Aperte o botão quando seu pull request for aceito.")
	message.SetString(lang, keyMarkCompleteLabel, "Marcar como concluída")
	message.SetString(lang, keyTaskCompleted, "Parabéns %s, a tarefa #%d foi concluída!")
	message.SetString(lang, keyActionNotApplicable, "%q não é a ação certa agora.")
	message.SetString(lang, keyUnhandledAction, "Desculpe, a ação %q não é tratada.")
	message.SetString(lang, keyMentorPullRequest, "%s: seu aprendiz %s abriu um pull request: %s")
}
