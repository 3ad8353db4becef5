package domain

// DraftFile is an in-memory attached image blob. Files are never persisted
// with the draft; they only exist between the compose and confirm steps.
type DraftFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// DraftPost is the transient, in-memory listing being composed across the
// publish wizard's steps. It is handed from the compose step to the
// agreement step by reference and consumed exactly once on submit.
type DraftPost struct {
	PublishType   string   `json:"publish_type" form:"publish_type" binding:"required,oneof=seek found adopt"`
	PetType       string   `json:"pet_type" form:"pet_type" binding:"required,oneof=dog cat"`
	Nickname      string   `json:"nickname" form:"nickname"`
	Breed         string   `json:"breed" form:"breed"`
	Age           string   `json:"age" form:"age"`
	Location      string   `json:"location" form:"location" binding:"required"`
	Description   string   `json:"description" form:"description" binding:"required"`
	Phone         string   `json:"phone" form:"phone" binding:"required"`
	IsPrivate     bool     `json:"is_private" form:"is_private"`
	RewardAmount  string   `json:"reward_amount" form:"reward_amount"`
	Vaccine       string   `json:"vaccine" form:"vaccine"`
	Sterilization string   `json:"sterilization" form:"sterilization"`
	Requirements  []string `json:"requirements" form:"requirements"`

	Files []DraftFile `json:"-"`
}

// Title derives the listing title: nickname, then breed, then the generic
// fallback used by the publish flow.
func (d *DraftPost) Title() string {
	if d.Nickname != "" {
		return d.Nickname
	}
	if d.Breed != "" {
		return d.Breed
	}
	return "寻宠/送养信息"
}
