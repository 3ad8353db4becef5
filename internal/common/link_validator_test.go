package common

import (
	"testing"
)

func TestValidateLinks(t *testing.T) {
	tests := []struct {
		name    string
		content string
		isAdmin bool
		wantErr bool
	}{
		{
			name:    "t.cn short link - should block",
			content: "加我看狗狗照片 https://t.cn/abc123",
			wantErr: true,
		},
		{
			name:    "dwz.cn short link - should block",
			content: "详情见 http://dwz.cn/xyz789 速联系",
			wantErr: true,
		},
		{
			name:    "bit.ly short link - should block",
			content: "https://bit.ly/3xyzpet",
			wantErr: true,
		},
		{
			name:    "full url - should allow",
			content: "走失地点地图 https://map.example.com/loc/123",
			wantErr: false,
		},
		{
			name:    "no links at all - should allow",
			content: "三个月大的橘猫，在朝阳公园附近走失",
			wantErr: false,
		},
		{
			name:    "admin quoting offending link - should allow",
			content: "该帖包含 https://t.cn/scam 已下架",
			isAdmin: true,
			wantErr: false,
		},
		{
			name:    "domain as substring of longer host - should allow",
			content: "https://docs.suo.im.example.com/page",
			wantErr: false,
		},
		{
			name:    "uppercase scheme and host - should block",
			content: "HTTPS://T.CN/ABC",
			wantErr: true,
		},
		{
			name:    "link in the middle of text - should block",
			content: "先付定金，点 https://suo.im/pay 转账",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLinks(tt.content, tt.isAdmin)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLinks() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
