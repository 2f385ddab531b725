package services

import (
	"fmt"
	"strconv"

	"github.com/acornsoft/pocha-backend/models"
	"github.com/acornsoft/pocha-backend/utils"
)

// Alimtalk template codes registered for the waitlist flow.
const (
	TemplateWaitingRegistered = "WaitlistRegistration"
	TemplateWaitingNowSeated  = "WaitlistNowSeated"
	TemplateWaitingOneLeft    = "WaitlistOneLeft"
	TemplateWaitingCancelled  = "WaitlistCancelled"
)

var mapButtons = []AlimtalkButton{
	{
		Order:      1,
		Type:       "WL",
		Name:       "위치보기",
		LinkMobile: "https://map.kakao.com/link/search/우리식당",
		LinkPC:     "https://map.kakao.com/link/search/우리식당",
	},
}

// WaitingNotifier formats and sends the waitlist messages. Sends are
// fire-and-forget: failures are logged and never bubble into the state
// transition that triggered them.
type WaitingNotifier struct {
	sender AlimtalkSender
}

func NewWaitingNotifier(sender AlimtalkSender) *WaitingNotifier {
	return &WaitingNotifier{sender: sender}
}

func (n *WaitingNotifier) Registered(restaurant *models.Restaurant, waiting *models.Waiting, remaining int64) {
	content := fmt.Sprintf("[%s]\n%s님, 웨이팅이 등록되었어요.\n\n남은 팀: %d팀",
		restaurant.Name, waiting.Name, remaining)
	n.send(TemplateWaitingRegistered, waiting.Phone, content, nil)
}

func (n *WaitingNotifier) NowSeated(restaurant *models.Restaurant, waiting *models.Waiting) {
	content := fmt.Sprintf("[%s]\n%s님, 입장 순서가 되었습니다.\n\n현재 바로 입장이 가능하니\n10분 이내에 직원에게 문의해주세요.",
		restaurant.Name, waiting.Name)
	n.send(TemplateWaitingNowSeated, waiting.Phone, content, mapButtons)
}

func (n *WaitingNotifier) OneLeft(restaurant *models.Restaurant, waiting *models.Waiting) {
	content := fmt.Sprintf("[%s]\n%s님, 곧 입장이 가능해요!\n\n앞에 대기 팀이 1팀 남았습니다.\n준비해 주시면 바로 안내드릴 수 있어요.",
		restaurant.Name, waiting.Name)
	n.send(TemplateWaitingOneLeft, waiting.Phone, content, mapButtons)
}

func (n *WaitingNotifier) Cancelled(restaurant *models.Restaurant, waiting *models.Waiting) {
	content := fmt.Sprintf("[%s]\n%s님, 웨이팅이 취소되었습니다.\n\n이용을 원하시면 다시 접수 부탁드립니다.",
		restaurant.Name, waiting.Name)
	n.send(TemplateWaitingCancelled, waiting.Phone, content, nil)
}

func (n *WaitingNotifier) send(templateCode, phone, content string, buttons []AlimtalkButton) {
	if err := n.sender.Send(templateCode, phone, content, buttons); err != nil {
		utils.ErrorLogger.Printf("alimtalk %s to %s failed: %v", templateCode, phone, err)
	}
}

// FormatWon renders an amount with thousands separators for message bodies.
func FormatWon(amount int) string {
	s := strconv.Itoa(amount)
	if len(s) <= 3 {
		return s + "원"
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out) + "원"
}
