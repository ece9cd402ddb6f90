package service

import (
	"github.com/bestie-next/internal/payment/stripe"
)

// beneficiaryMetadataKeys 受助对象 ID 的历史键名变体，按优先级排列
var beneficiaryMetadataKeys = []string{"bestie_id", "sponsor_bestie_id", "bestieId"}

// MergeMetadata 按层合并元数据，后面的层覆盖前面的层
// 调用约定：对象自身元数据在前，订阅元数据居中，Checkout Session 元数据最后
// （order_id 等标记在建 Session 时写入，因此 Session 层最权威）
func MergeMetadata(layers ...stripe.Metadata) stripe.Metadata {
	merged := stripe.Metadata{}
	for _, layer := range layers {
		for key, value := range layer {
			if value == "" {
				continue
			}
			merged[key] = value
		}
	}
	return merged
}

// BeneficiaryID 从元数据提取受助对象 ID，归一化历史键名变体
func BeneficiaryID(metadata stripe.Metadata) string {
	for _, key := range beneficiaryMetadataKeys {
		if id := metadata.Get(key); id != "" {
			return id
		}
	}
	return ""
}

// OrderID 从元数据提取商城订单号
func OrderID(metadata stripe.Metadata) string {
	return metadata.Get("order_id")
}

// IsGeneralDonation 元数据是否显式标记为普通捐赠
func IsGeneralDonation(metadata stripe.Metadata) bool {
	return metadata.Get("type") == "donation" || metadata.Get("donation_type") == "general"
}
