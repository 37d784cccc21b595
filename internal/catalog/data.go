package catalog

import "go.uber.org/zap"

// builtinVoices maps display names to backend voice ids, in catalog order.
var builtinVoices = []struct{ Name, ID string }{
	{"爱新觉罗·弘历", "雍正王朝_爱新觉罗·弘历"},
	{"爱新觉罗·弘时", "雍正王朝_爱新觉罗·弘时"},
	{"曹操", "三国演义_曹操"},
	{"刁光斗", "大宋提刑官_刁光斗"},
	{"丰兰息", "且试天下_丰兰息"},
	{"公孙胜", "水浒传_公孙胜"},
	{"关涛", "幸福到万家_关涛"},
	{"关雪", "哈尔滨一九四四_关雪"},
	{"郭德纲", "郭德纲_郭德纲"},
	{"郭启东", "风吹半夏_郭启东"},
	{"何幸福", "幸福到万家_何幸福"},
	{"灰太狼", "喜羊羊与灰太狼_灰太狼"},
	{"康熙", "康熙王朝_康熙"},
	{"李蔷", "法医秦明_李蔷"},
	{"李涯", "潜伏_李涯"},
	{"卢怀德", "大宋提刑官_卢怀德"},
	{"陆建勋", "老九门_陆建勋"},
	{"陆桥山", "潜伏_陆桥山"},
	{"穆晚秋", "潜伏_穆晚秋"},
	{"年羹尧", "雍正王朝_年羹尧"},
	{"潘金莲", "水浒传_潘金莲"},
	{"潘越", "哈尔滨一九四四_潘越"},
	{"佩奇", "小猪佩奇_佩奇"},
	{"齐铁嘴", "老九门_齐铁嘴"},
	{"秦明", "法医秦明_秦明"},
	{"青年康熙", "康熙王朝_青年康熙"},
	{"裘德考", "老九门_裘德考"},
	{"荣妃", "康熙王朝_荣妃"},
	{"四郎", "甄嬛传_四郎"},
	{"司徒末", "致我们暖暖的小时光_司徒末"},
	{"宋慈", "大宋提刑官_宋慈"},
	{"苏麻喇姑", "康熙王朝_苏麻喇姑"},
	{"苏培盛", "甄嬛传_苏培盛"},
	{"孙颖莎", "孙颖莎_孙颖莎"},
	{"唐僧", "西游记_唐僧"},
	{"铁铉", "山河月明_铁铉"},
	{"王翠平", "潜伏_王翠平"},
	{"吴三桂", "康熙王朝_吴三桂"},
	{"邬思道", "雍正王朝_邬思道"},
	{"武松", "水浒传_武松"},
	{"萧崇", "少年歌行_萧崇"},
	{"孝庄", "康熙王朝_孝庄"},
	{"许半夏", "风吹半夏_许半夏"},
	{"徐文昌", "安家_徐文昌"},
	{"野原美伢 (美伢)", "蜡笔小新_野原美伢 (美伢)"},
	{"野原新之助 (小新)", "蜡笔小新_野原新之助 (小新)"},
	{"雍正", "雍正王朝_雍正"},
	{"于谦", "于谦_于谦"},
	{"余则成", "潜伏_余则成"},
	{"张启山", "老九门_张启山"},
	{"朱标", "山河月明_朱标"},
	{"朱棣", "山河月明_朱棣"},
	{"朱颜", "玉骨遥_朱颜"},
	{"朱元璋", "山河月明_朱元璋"},
	{"左蓝", "潜伏_左蓝"},
}

// builtinLines are the characters' signature lines, spoken when a reference
// clip has to be synthesized for an IP voice.
var builtinLines = map[string]string{
	"何幸福":       "凡事都要讲个理，我就想跟他们讲讲理！",
	"朱元璋":       "咱告诉你，从今往后，中书省，废了！丞相，废了！",
	"朱标":        "父皇，治国之道，当以仁爱为本，刑罚为辅。",
	"朱棣":        "我朱棣，奉天靖难，入主金陵，此乃天命所归！",
	"潘金莲":       "大郎，起来把这碗药喝了。",
	"公孙胜":       "贫道乃云游之人，特来相助替天行道。",
	"齐铁嘴":       "哎哟我的佛爷啊，此事非同小可，咱们可得从长计议啊！",
	"爱新觉罗·弘时":   "皇阿玛，儿臣以为，八叔他们并无大错。",
	"邬思道":       "四爷，这太子之位，争，还是不争，皆在一念之间。",
	"孝庄":        "我告诉你，就是把它烧成灰，你也要给我吞下去！",
	"吴三桂":       "大丈夫不可一日无权，人生不可一日无钱！",
	"司徒末":       "顾未易，你是不是喜欢我啊？",
	"宋慈":        "人命大如天，我等提刑官，须得明察秋毫，洗冤泽物。",
	"刁光斗":       "在这官场之上，能屈能伸，方为大丈夫。",
	"萧崇":        "这天启城，终究还是姓萧的。",
	"余则成":       "有一种胜利，叫撤退；有一种失败，叫占领。",
	"左蓝":        "你能保证，你刚才说的话，都是真的吗？",
	"曹操":        "宁教我负天下人，休教天下人负我！",
	"四郎":        "逆风如解意，容易莫摧残。",
	"李蔷":        "作为一名法医，我的职责是让逝者开口说话。",
	"陆建勋":       "我陆建勋，要的就是这长沙城，谁也别想挡我的路！",
	"野原美伢 (美伢)": "小新！你又在搞什么鬼！你这个孩子真是的！",
	"荣妃":        "皇上，难道您就真的这么狠心，一点旧情都不念了吗？",
	"青年康熙":      "朕现在是越来越看清你们这群所谓的大臣了！",
	"许半夏":       "我就不信了，这天底下还有我们办不成的事！",
	"朱颜":        "我此生，只为守护空桑，守护你。",
	"王翠平":       "你这鸡脑袋里想什么呢？这点事都搞不明白！",
	"李涯":        "为了党国，我什么都可以做，包括我自己的命！",
	"穆晚秋":       "则成，我什么都不要，我只要跟你在一起。",
	"陆桥山":       "马奎啊马奎，你太让我失望了。",
	"徐文昌":       "房子是用来住的，不是用来炒的。",
	"关涛":        "何幸福，你这种较真的精神，我很欣赏。",
	"铁铉":        "我铁铉就算死，也绝不向燕贼投降！",
	"苏培盛":       "皇上，熹贵妃娘娘她，是真心待您的。",
	"武松":        "我武松，顶天立地，岂能受这般屈辱！",
	"秦明":        "每一具尸体，都有他自己的故事。",
	"裘德考":       "这些秘密，必须由我来揭开！",
	"张启山":       "我张启山，一定要守护好这九门，守护好长沙！",
	"爱新觉罗·弘历":   "皇阿玛，儿臣以为，当以宽仁治天下。",
	"年羹尧":       "我年羹尧戎马一生，难道还怕这区区几句谗言吗？",
	"雍正":        "朕就是这样的汉子！就是这样的秉性！就是这样的皇帝！",
	"野原新之助 (小新)": "大姐姐，你喜欢吃青椒吗？",
	"潘越":        "在这儿，我说了算。",
	"关雪":        "宋卓文，你最好别在我面前耍花样。",
	"佩奇":        "我是佩奇，这是我的弟弟乔治。",
	"康熙":        "朕宣布，削三藩！朕要让天下看看，到底谁才是这大清的皇帝！",
	"苏麻喇姑":      "格格，您要保重凤体啊。",
	"郭启东":       "商场如战场，没有永远的朋友，只有永远的利益。",
	"卢怀德":       "来人，给我把这个刁民拖出去！",
	"丰兰息":       "这天下，我要九十九。",
	"灰太狼":       "我一定会回来的！",
	"唐僧":        "悟空，休得无礼！",
	"郭德纲":       "走着走着，哎，前边儿出一问号儿，后边儿出一感叹号儿。",
	"于谦":        "您这说的，我可就不挨着了啊。",
	"孙颖莎":       "就是一分一分去打，不管领先还是落后，都要去拼每一分球。",
}

// Default builds the catalog with the built-in data.
func Default(logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{
		voices: make(map[string]string, len(builtinVoices)),
		lines:  builtinLines,

		BGMGenres: []string{
			"独立民谣：吉他驱动", "当代古典音乐：钢琴驱动", "现代流行抒情曲：钢琴驱动的",
			"乡村音乐", "流行乐", "流行摇滚", "电子舞曲", "雷鬼顿", "迪斯科",
		},
		BGMMoods: []string{
			"鼓舞人心/充满希望", "壮丽宏大", "快乐", "平静放松", "自信/坚定",
			"轻快无忧无虑", "活力四射/精力充沛", "悲伤哀愁", "温暖/友善", "兴奋",
		},
		BGMInstruments: []string{"低音鼓", "电吉他", "合成拨弦", "合成铜管乐器", "架子鼓", "定音鼓"},
		BGMThemes: []string{
			"励志", "生日", "分手", "旅行", "运动", "剧院音乐厅", "音乐现场",
			"节日", "好时光", "庆典与喜悦",
		},
		SWBGenres:      []string{"流行摇滚", "迪斯科", "电子舞曲"},
		SWBMoods:       []string{"快乐", "兴奋", "活力四射"},
		SWBInstruments: []string{"电吉他", "合成铜管乐器", "架子鼓"},
		SWBThemes:      []string{"生日", "旅行", "运动"},
		Dialects:       []string{"四川话", "广粤话"},
		Emotions:       []string{"中性", "高兴", "惊讶", "愤怒", "悲伤", "厌恶", "恐惧"},

		logger: logger,
	}
	for _, v := range builtinVoices {
		c.names = append(c.names, v.Name)
		c.voices[v.Name] = v.ID
	}
	return c
}
